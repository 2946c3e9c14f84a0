package transfer

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/mtlprog/knownorigin/internal/domain"
)

const (
	fromAddr     = "0x1111111111111111111111111111111111111111"
	toAddr       = "0x2222222222222222222222222222222222222222"
	contractAddr = "0xfbeef911dc5821886e1dda71586d90ed28174b7d"
)

type mockSigner struct {
	address  string
	hash     string
	err      error
	contract string
	data     []byte
}

func (m *mockSigner) Address() string { return m.address }

func (m *mockSigner) SendTransaction(_ context.Context, contract string, data []byte) (string, error) {
	m.contract = contract
	m.data = data
	return m.hash, m.err
}

type mockProvider struct {
	signer *mockSigner
	err    error
	calls  int
}

func (m *mockProvider) CurrentSigner(_ context.Context) (Signer, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.signer, nil
}

func testAsset() domain.Asset {
	return domain.Asset{ID: contractAddr + "-7", TokenID: "7", ContractAddress: contractAddr}
}

func TestTransferWithoutIdentity(t *testing.T) {
	provider := &mockProvider{signer: &mockSigner{address: fromAddr}}

	_, err := NewService(provider).Transfer(context.Background(), nil, toAddr, testAsset())
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
	if !domain.IsPrecondition(err) {
		t.Error("error should be a PreconditionError")
	}
	if provider.calls != 0 {
		t.Errorf("signer provider called %d times, want 0", provider.calls)
	}
}

func TestTransferSubmitsTransferFrom(t *testing.T) {
	signer := &mockSigner{address: strings.ToUpper(fromAddr[:2]) + fromAddr[2:], hash: "0xabc"}
	provider := &mockProvider{signer: signer}

	hash, err := NewService(provider).Transfer(context.Background(), &domain.Identity{Address: fromAddr}, toAddr, testAsset())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash != "0xabc" {
		t.Errorf("hash = %q, want 0xabc", hash)
	}
	if signer.contract != contractAddr {
		t.Errorf("contract = %q", signer.contract)
	}

	want := "23b872dd" +
		"0000000000000000000000001111111111111111111111111111111111111111" +
		"0000000000000000000000002222222222222222222222222222222222222222" +
		"0000000000000000000000000000000000000000000000000000000000000007"
	if got := hex.EncodeToString(signer.data); got != want {
		t.Errorf("calldata = %s, want %s", got, want)
	}
}

func TestTransferValidation(t *testing.T) {
	tests := []struct {
		name    string
		to      string
		asset   domain.Asset
		wantErr error
	}{
		{"bad recipient", "0x123", testAsset(), ErrInvalidAddress},
		{"bad contract", toAddr, domain.Asset{TokenID: "7", ContractAddress: "nope"}, ErrInvalidAddress},
		{"bad token id", toAddr, domain.Asset{TokenID: "seven", ContractAddress: contractAddr}, ErrInvalidTokenID},
		{"negative token id", toAddr, domain.Asset{TokenID: "-1", ContractAddress: contractAddr}, ErrInvalidTokenID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{signer: &mockSigner{address: fromAddr}}
			_, err := NewService(provider).Transfer(context.Background(), &domain.Identity{Address: fromAddr}, tt.to, tt.asset)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if provider.calls != 0 {
				t.Error("invalid input should fail before resolving a signer")
			}
		})
	}
}

func TestTransferSignerMismatch(t *testing.T) {
	provider := &mockProvider{signer: &mockSigner{address: toAddr}}
	_, err := NewService(provider).Transfer(context.Background(), &domain.Identity{Address: fromAddr}, toAddr, testAsset())
	if !domain.IsPrecondition(err) {
		t.Errorf("error = %v, want PreconditionError", err)
	}
}

func TestTransferPropagatesCollaboratorErrors(t *testing.T) {
	cause := errors.New("collaborator failed")

	providerErr := &mockProvider{err: cause}
	if _, err := NewService(providerErr).Transfer(context.Background(), &domain.Identity{Address: fromAddr}, toAddr, testAsset()); !errors.Is(err, cause) {
		t.Errorf("provider error = %v, want wrapped cause", err)
	}

	sendErr := &mockProvider{signer: &mockSigner{address: fromAddr, err: cause}}
	if _, err := NewService(sendErr).Transfer(context.Background(), &domain.Identity{Address: fromAddr}, toAddr, testAsset()); !errors.Is(err, cause) {
		t.Errorf("send error = %v, want wrapped cause", err)
	}
}
