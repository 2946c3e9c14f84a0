package external

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// MemoryQuoteRepository keeps quotes in process memory. Used when no database is configured.
type MemoryQuoteRepository struct {
	mu     sync.RWMutex
	quotes map[string]Quote
	now    func() time.Time
}

// NewMemoryQuoteRepository creates an empty in-memory repository.
func NewMemoryQuoteRepository() *MemoryQuoteRepository {
	return &MemoryQuoteRepository{quotes: make(map[string]Quote), now: time.Now}
}

func (r *MemoryQuoteRepository) SaveQuote(_ context.Context, pair string, rate decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes[pair] = Quote{Pair: pair, Rate: rate, UpdatedAt: r.now()}
	return nil
}

func (r *MemoryQuoteRepository) GetQuote(_ context.Context, pair string) (Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.quotes[pair]
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrQuoteNotFound, pair)
	}
	return q, nil
}

func (r *MemoryQuoteRepository) GetAllQuotes(_ context.Context) ([]Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quotes := lo.Values(r.quotes)
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Pair < quotes[j].Pair })
	return quotes, nil
}
