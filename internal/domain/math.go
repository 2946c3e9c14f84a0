package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the number of fractional digits of the native currency (wei per ether = 10^18).
const NativeDecimals = 18

// ReferenceDecimals is the precision reference-currency prices are truncated to.
const ReferenceDecimals = 18

// ParseWei parses a non-negative integer amount in the native currency's smallest unit.
func ParseWei(value string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok {
		return nil, fmt.Errorf("invalid wei amount %q", value)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("negative wei amount %q", value)
	}
	return n, nil
}

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// WeiToUnits expresses a wei amount in whole native units without rounding.
func WeiToUnits(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -NativeDecimals)
}

// ConvertWei converts a wei amount into the reference currency at rate (reference units per
// native unit): wei * rate / 10^18, truncated to ReferenceDecimals fractional digits.
func ConvertWei(wei *big.Int, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromBigInt(wei, 0).Mul(rate).Shift(-NativeDecimals).Truncate(ReferenceDecimals)
}

// FormatAmount renders d in its shortest fixed-point form, stripping trailing zeros.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(ReferenceDecimals)
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
