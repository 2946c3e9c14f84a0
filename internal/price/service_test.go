package price

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

type mockConverter struct {
	rate   decimal.Decimal
	err    error
	amount decimal.Decimal
	calls  int
}

func (m *mockConverter) ConvertNativeToReference(_ context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	m.calls++
	m.amount = amount
	if m.err != nil {
		return decimal.Decimal{}, m.err
	}
	return amount.Mul(m.rate), nil
}

func TestOneUnitInReferenceCurrency(t *testing.T) {
	tests := []struct {
		name string
		rate string
		want string
	}{
		{"integer rate", "2", "2"},
		{"trailing zeros trimmed", "2.0500", "2.05"},
		{"high precision", "4123.123456789012345678", "4123.123456789012345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &mockConverter{rate: decimal.RequireFromString(tt.rate)}
			got, err := NewOracle(conv).OneUnitInReferenceCurrency(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("OneUnitInReferenceCurrency() = %q, want %q", got, tt.want)
			}
			if !conv.amount.Equal(decimal.NewFromInt(1)) {
				t.Errorf("converter asked for %s units, want 1", conv.amount)
			}
		})
	}
}

func TestOneUnitInReferenceCurrencyPropagatesError(t *testing.T) {
	cause := errors.New("coingecko down")
	_, err := NewOracle(&mockConverter{err: cause}).OneUnitInReferenceCurrency(context.Background())
	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapped %v", err, cause)
	}
}

func TestOneUnitInReferenceCurrencyRejectsNegative(t *testing.T) {
	_, err := NewOracle(&mockConverter{rate: decimal.NewFromInt(-1)}).OneUnitInReferenceCurrency(context.Background())
	if !errors.Is(err, ErrNoPrice) {
		t.Errorf("error = %v, want ErrNoPrice", err)
	}
}

func TestNewOraclePanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil converter")
		}
	}()
	NewOracle(nil)
}

func TestBasisPointsFee(t *testing.T) {
	tests := []struct {
		name string
		bps  int64
		wei  string
		want string
	}{
		{"default fee on one ether", DefaultFeeBasisPoints, "1000000000000000000", "1025000000000000000"},
		{"zero fee", 0, "1000", "1000"},
		{"fee floors", DefaultFeeBasisPoints, "39", "39"},
		{"fee on 40 wei", DefaultFeeBasisPoints, "40", "41"},
		{"negative bps clamps", -100, "1000", "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wei, _ := new(big.Int).SetString(tt.wei, 10)
			got := NewBasisPointsFee(tt.bps).ApplyFee(wei)
			if got.String() != tt.want {
				t.Errorf("ApplyFee(%s) = %s, want %s", tt.wei, got, tt.want)
			}
			if wei.String() != tt.wei {
				t.Errorf("ApplyFee mutated its input to %s", wei)
			}
		})
	}
}
