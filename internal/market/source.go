package market

import (
	"context"

	"github.com/mtlprog/knownorigin/internal/domain"
)

// Source is one paginated fragment endpoint of the data source. There is one per shape.
type Source interface {
	Fetch(ctx context.Context, params domain.Params) ([]domain.Fragment, error)
	Count(ctx context.Context, params domain.Params) (int, error)
	// FetchOne returns (nil, nil) when no fragment has the id.
	FetchOne(ctx context.Context, id string) (domain.Fragment, error)
}

// RateOracle yields the value of one native unit in the reference currency.
type RateOracle interface {
	OneUnitInReferenceCurrency(ctx context.Context) (string, error)
}
