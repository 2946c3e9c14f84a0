// Package chain signs and broadcasts transactions to an EVM JSON-RPC endpoint.
package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Backend is the JSON-RPC subset KeySigner needs. *ethclient.Client satisfies it.
type Backend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// KeySigner signs EIP-1559 transactions with a local private key.
type KeySigner struct {
	backend Backend
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

// NewKeySigner creates a signer for key on chainID.
func NewKeySigner(backend Backend, key *ecdsa.PrivateKey, chainID int64) *KeySigner {
	return &KeySigner{
		backend: backend,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(chainID),
	}
}

// LoadKey decrypts a V3 keystore file.
func LoadKey(path, passphrase string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keystore %s: %w", path, err)
	}
	key, err := keystore.DecryptKey(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("decrypting keystore %s: %w", path, err)
	}
	return key.PrivateKey, nil
}

// Address returns the checksummed signer address.
func (s *KeySigner) Address() string {
	return s.address.Hex()
}

// SendTransaction builds, signs and broadcasts a zero-value call to contract.
// It returns once the node accepted the transaction.
func (s *KeySigner) SendTransaction(ctx context.Context, contract string, data []byte) (string, error) {
	to := common.HexToAddress(contract)

	nonce, err := s.backend.PendingNonceAt(ctx, s.address)
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", err)
	}

	tip, err := s.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return "", fmt.Errorf("suggesting gas tip: %w", err)
	}

	head, err := s.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("getting latest header: %w", err)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(baseFee(head), big.NewInt(2)))

	gas, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:      s.address,
		To:        &to,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Data:      data,
	})
	if err != nil {
		return "", fmt.Errorf("estimating gas: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   s.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     new(big.Int),
		Data:      data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("sending transaction: %w", err)
	}
	return signed.Hash().Hex(), nil
}

func baseFee(head *types.Header) *big.Int {
	if head == nil || head.BaseFee == nil {
		return new(big.Int)
	}
	return head.BaseFee
}
