package external

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CachedQuoteRepository wraps a primary repository with a Redis read-through cache.
// Writes go to the primary and refresh the cache; reads check Redis first.
type CachedQuoteRepository struct {
	primary QuoteRepository
	rdb     redis.Cmdable
	ttl     time.Duration
}

// NewCachedQuoteRepository creates a cached wrapper around primary.
func NewCachedQuoteRepository(primary QuoteRepository, rdb redis.Cmdable, ttl time.Duration) *CachedQuoteRepository {
	return &CachedQuoteRepository{primary: primary, rdb: rdb, ttl: ttl}
}

func (r *CachedQuoteRepository) SaveQuote(ctx context.Context, pair string, rate decimal.Decimal) error {
	if err := r.primary.SaveQuote(ctx, pair, rate); err != nil {
		return err
	}
	if err := r.rdb.Del(ctx, quoteKey(pair)).Err(); err != nil {
		slog.Warn("quote cache invalidation failed", "pair", pair, "error", err)
	}
	return nil
}

func (r *CachedQuoteRepository) GetQuote(ctx context.Context, pair string) (Quote, error) {
	data, err := r.rdb.Get(ctx, quoteKey(pair)).Bytes()
	if err == nil {
		var q Quote
		if json.Unmarshal(data, &q) == nil {
			return q, nil
		}
	}

	q, err := r.primary.GetQuote(ctx, pair)
	if err != nil {
		return Quote{}, err
	}

	if data, err := json.Marshal(q); err == nil {
		r.rdb.Set(ctx, quoteKey(pair), data, r.ttl)
	}
	return q, nil
}

func (r *CachedQuoteRepository) GetAllQuotes(ctx context.Context) ([]Quote, error) {
	return r.primary.GetAllQuotes(ctx)
}

func quoteKey(pair string) string { return "knownorigin:quote:" + pair }
