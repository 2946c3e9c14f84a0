// Package market aggregates subgraph fragments into assets, owner accounts and sale orders.
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/knownorigin/internal/domain"
	"github.com/mtlprog/knownorigin/internal/metrics"
	"github.com/mtlprog/knownorigin/internal/normalize"
	"github.com/mtlprog/knownorigin/internal/price"
	"github.com/mtlprog/knownorigin/internal/registry"
)

// ErrNotFound is returned by FetchOne when the source has no fragment with the given id.
var ErrNotFound = errors.New("nft not found")

// Result is one page of normalized listings.
type Result struct {
	Assets   []domain.Asset   `json:"nfts"`
	Accounts []domain.Account `json:"accounts"`
	Orders   []domain.Order   `json:"orders"`
	Total    int              `json:"total"`
}

// Service is the aggregation pipeline. It holds no per-call state and is safe for concurrent use.
type Service struct {
	tokens   Source
	editions Source
	oracle   RateOracle
	fee      price.FeePolicy
	registry registry.Registry
	origins  registry.OriginResolver
	chain    normalize.Chain
}

// NewService creates a new aggregation Service. All dependencies are required.
func NewService(tokens, editions Source, oracle RateOracle, fee price.FeePolicy, reg registry.Registry, origins registry.OriginResolver, chain normalize.Chain) *Service {
	if tokens == nil {
		panic("market.NewService: tokens is nil")
	}
	if editions == nil {
		panic("market.NewService: editions is nil")
	}
	if oracle == nil {
		panic("market.NewService: oracle is nil")
	}
	if fee == nil {
		panic("market.NewService: fee is nil")
	}
	if reg == nil {
		panic("market.NewService: registry is nil")
	}
	if origins == nil {
		panic("market.NewService: origins is nil")
	}
	return &Service{
		tokens:   tokens,
		editions: editions,
		oracle:   oracle,
		fee:      fee,
		registry: reg,
		origins:  origins,
		chain:    chain,
	}
}

// Fetch reads one page from the source selected by filters (editions unless filters.IsToken)
// and normalizes it. The total and the conversion rate are loaded concurrently once the
// fragments are in, so every order in the page is priced at the same rate.
func (s *Service) Fetch(ctx context.Context, params domain.Params, filters *domain.Filters) (result Result, err error) {
	start := time.Now()
	defer func() { metrics.ObserveSince("fetch", start, err) }()

	fragments, err := s.source(filters).Fetch(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("fetching fragments: %w", err)
	}

	var (
		total int
		rate  string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.Count(gctx, params, filters)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	g.Go(func() error {
		r, err := s.oracle.OneUnitInReferenceCurrency(gctx)
		if err != nil {
			return fmt.Errorf("loading conversion rate: %w", err)
		}
		rate = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	scope, err := normalize.ResolveScope(s.registry, s.origins, s.chain, hasEdition(fragments))
	if err != nil {
		return Result{}, err
	}

	result = Result{
		Assets:   make([]domain.Asset, 0, len(fragments)),
		Accounts: []domain.Account{},
		Orders:   []domain.Order{},
		Total:    total,
	}
	for _, fragment := range fragments {
		asset, order, err := s.build(scope, fragment, rate)
		if err != nil {
			return Result{}, err
		}
		result.Assets = append(result.Assets, asset)
		if order != nil {
			result.Orders = append(result.Orders, *order)
		}
		result.Accounts = domain.AddToAccount(result.Accounts, asset.Owner, asset.ID)
	}

	return result, nil
}

// Count returns the number of matching fragments. Pagination is replaced by the full first
// page. Without filters both sources are counted concurrently and summed.
func (s *Service) Count(ctx context.Context, params domain.Params, filters *domain.Filters) (total int, err error) {
	start := time.Now()
	defer func() { metrics.ObserveSince("count", start, err) }()

	params = params.CountParams()

	if filters != nil {
		n, err := s.source(filters).Count(ctx, params)
		if err != nil {
			return 0, fmt.Errorf("counting %s fragments: %w", filters.SelectedType(), err)
		}
		return n, nil
	}

	var tokens, editions int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.tokens.Count(gctx, params)
		if err != nil {
			return fmt.Errorf("counting tokens: %w", err)
		}
		tokens = n
		return nil
	})
	g.Go(func() error {
		n, err := s.editions.Count(gctx, params)
		if err != nil {
			return fmt.Errorf("counting editions: %w", err)
		}
		editions = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return tokens + editions, nil
}

// FetchOne loads a single fragment by token id from the source selected by filters.
// contractAddress is accepted for API compatibility only: the contract always comes from the
// registry. The returned order is nil for tokens.
func (s *Service) FetchOne(ctx context.Context, contractAddress, tokenID string, filters *domain.Filters) (asset domain.Asset, order *domain.Order, err error) {
	start := time.Now()
	defer func() { metrics.ObserveSince("fetch_one", start, err) }()

	fragment, err := s.source(filters).FetchOne(ctx, tokenID)
	if err != nil {
		return domain.Asset{}, nil, fmt.Errorf("fetching fragment %s: %w", tokenID, err)
	}
	if fragment == nil {
		return domain.Asset{}, nil, fmt.Errorf("%w: %s", ErrNotFound, tokenID)
	}

	isEdition := fragment.Type() == domain.FragmentTypeEdition

	var rate string
	if isEdition {
		rate, err = s.oracle.OneUnitInReferenceCurrency(ctx)
		if err != nil {
			return domain.Asset{}, nil, fmt.Errorf("loading conversion rate: %w", err)
		}
	}

	scope, err := normalize.ResolveScope(s.registry, s.origins, s.chain, isEdition)
	if err != nil {
		return domain.Asset{}, nil, err
	}

	return s.build(scope, fragment, rate)
}

// build normalizes one fragment and, for editions, derives its order and links it.
func (s *Service) build(scope normalize.Scope, fragment domain.Fragment, rate string) (domain.Asset, *domain.Order, error) {
	asset, err := normalize.Normalize(scope, fragment)
	if err != nil {
		return domain.Asset{}, nil, err
	}
	metrics.FragmentsNormalized.WithLabelValues(string(fragment.Type())).Inc()

	switch f := fragment.(type) {
	case domain.TokenFragment:
		return asset, nil, nil
	case domain.EditionFragment:
		order, err := normalize.DeriveOrder(scope, s.fee, f, rate)
		if err != nil {
			return domain.Asset{}, nil, err
		}
		asset.ActiveOrderID = order.ID
		metrics.OrdersDerived.Inc()
		return asset, &order, nil
	default:
		return domain.Asset{}, nil, &domain.UnrecognizedShapeError{Type: fmt.Sprintf("%T", fragment)}
	}
}

func (s *Service) source(filters *domain.Filters) Source {
	if filters.SelectedType() == domain.FragmentTypeToken {
		return s.tokens
	}
	return s.editions
}

func hasEdition(fragments []domain.Fragment) bool {
	return lo.ContainsBy(fragments, func(f domain.Fragment) bool {
		_, ok := f.(domain.EditionFragment)
		return ok
	})
}
