package price

import (
	"context"

	"github.com/shopspring/decimal"
)

// Converter is the spot price-conversion collaborator.
type Converter interface {
	// ConvertNativeToReference expresses amount native units in the reference currency.
	ConvertNativeToReference(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
}
