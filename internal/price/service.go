package price

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/knownorigin/internal/domain"
)

// ErrNoPrice indicates that the converter returned no usable rate.
var ErrNoPrice = errors.New("no price available")

// Oracle answers how much one native unit is worth in the reference currency.
type Oracle struct {
	converter Converter
}

// NewOracle creates an Oracle backed by converter.
func NewOracle(converter Converter) *Oracle {
	if converter == nil {
		panic("price.NewOracle: converter must not be nil")
	}
	return &Oracle{converter: converter}
}

// OneUnitInReferenceCurrency returns the value of 1 native unit as a human decimal string
// (for example "2351.12"), never in smallest units.
func (o *Oracle) OneUnitInReferenceCurrency(ctx context.Context) (string, error) {
	rate, err := o.converter.ConvertNativeToReference(ctx, decimal.NewFromInt(1))
	if err != nil {
		return "", fmt.Errorf("converting one native unit: %w", err)
	}
	if rate.IsNegative() {
		return "", fmt.Errorf("%w: negative rate %s", ErrNoPrice, rate)
	}
	return domain.FormatAmount(rate), nil
}
