// Package transfer submits ERC-721 ownership transfers on behalf of a connected wallet.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/mtlprog/knownorigin/internal/domain"
	"github.com/mtlprog/knownorigin/internal/metrics"
)

var (
	// ErrInvalidAddress is returned for malformed recipient, sender or contract addresses.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidTokenID is returned when the asset token id is not a non-negative integer.
	ErrInvalidTokenID = errors.New("invalid token id")
)

const erc721ABI = `[{"name":"transferFrom","type":"function","stateMutability":"nonpayable",
"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],
"outputs":[]}]`

var erc721 = mustParseABI(erc721ABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("transfer: parsing ERC-721 ABI: %v", err))
	}
	return parsed
}

// Signer signs and broadcasts transactions for one account.
type Signer interface {
	Address() string
	// SendTransaction submits a call to contract and returns its hash without waiting
	// for it to be mined.
	SendTransaction(ctx context.Context, contract string, data []byte) (string, error)
}

// SignerProvider resolves the signer bound to the current session.
type SignerProvider interface {
	CurrentSigner(ctx context.Context) (Signer, error)
}

// Service initiates transfers.
type Service struct {
	signers SignerProvider
}

// NewService creates a transfer Service.
func NewService(signers SignerProvider) *Service {
	if signers == nil {
		panic("transfer.NewService: signers is nil")
	}
	return &Service{signers: signers}
}

// Transfer moves asset from identity to the recipient and returns the transaction hash as
// soon as it is submitted. A nil identity fails with domain.ErrUnauthenticated before any
// network interaction.
func (s *Service) Transfer(ctx context.Context, identity *domain.Identity, to string, asset domain.Asset) (txHash string, err error) {
	if identity == nil {
		return "", domain.ErrUnauthenticated
	}

	data, err := EncodeTransferFrom(identity.Address, to, asset.TokenID)
	if err != nil {
		return "", err
	}
	if !common.IsHexAddress(asset.ContractAddress) {
		return "", fmt.Errorf("%w: contract %q", ErrInvalidAddress, asset.ContractAddress)
	}

	defer func() { metrics.TransfersSubmitted.WithLabelValues(metrics.Outcome(err)).Inc() }()

	signer, err := s.signers.CurrentSigner(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving signer: %w", err)
	}
	if !strings.EqualFold(signer.Address(), identity.Address) {
		return "", &domain.PreconditionError{Reason: fmt.Sprintf("session signer %s does not match identity %s", signer.Address(), identity.Address)}
	}

	txHash, err = signer.SendTransaction(ctx, asset.ContractAddress, data)
	if err != nil {
		return "", fmt.Errorf("submitting transfer of %s: %w", asset.ID, err)
	}
	return txHash, nil
}

// EncodeTransferFrom builds the calldata of ERC-721 transferFrom(from, to, tokenId).
func EncodeTransferFrom(from, to, tokenID string) ([]byte, error) {
	if !common.IsHexAddress(from) {
		return nil, fmt.Errorf("%w: sender %q", ErrInvalidAddress, from)
	}
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("%w: recipient %q", ErrInvalidAddress, to)
	}
	id, ok := new(big.Int).SetString(tokenID, 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTokenID, tokenID)
	}

	data, err := erc721.Pack("transferFrom", common.HexToAddress(from), common.HexToAddress(to), id)
	if err != nil {
		return nil, fmt.Errorf("encoding transferFrom: %w", err)
	}
	return data, nil
}
