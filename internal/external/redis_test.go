package external

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// fakeRedis implements the Get/Set/Del subset of redis.Cmdable over a map.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	gets int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.gets++
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// countingRepo counts primary reads.
type countingRepo struct {
	*MemoryQuoteRepository
	reads int
}

func (r *countingRepo) GetQuote(ctx context.Context, pair string) (Quote, error) {
	r.reads++
	return r.MemoryQuoteRepository.GetQuote(ctx, pair)
}

func TestCachedQuoteRepositoryReadThrough(t *testing.T) {
	ctx := context.Background()
	primary := &countingRepo{MemoryQuoteRepository: NewMemoryQuoteRepository()}
	if err := primary.SaveQuote(ctx, "ethereum/decentraland", decimal.RequireFromString("2.5")); err != nil {
		t.Fatal(err)
	}
	rdb := newFakeRedis()
	repo := NewCachedQuoteRepository(primary, rdb, time.Minute)

	for range 3 {
		q, err := repo.GetQuote(ctx, "ethereum/decentraland")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !q.Rate.Equal(decimal.RequireFromString("2.5")) {
			t.Errorf("rate = %s, want 2.5", q.Rate)
		}
	}

	if primary.reads != 1 {
		t.Errorf("primary reads = %d, want 1 (later reads served from cache)", primary.reads)
	}
	if _, ok := rdb.data[quoteKey("ethereum/decentraland")]; !ok {
		t.Error("quote was not cached")
	}
}

func TestCachedQuoteRepositorySaveInvalidates(t *testing.T) {
	ctx := context.Background()
	primary := &countingRepo{MemoryQuoteRepository: NewMemoryQuoteRepository()}
	rdb := newFakeRedis()
	repo := NewCachedQuoteRepository(primary, rdb, time.Minute)

	if err := repo.SaveQuote(ctx, "p", decimal.NewFromInt(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetQuote(ctx, "p"); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveQuote(ctx, "p", decimal.NewFromInt(2)); err != nil {
		t.Fatal(err)
	}

	q, err := repo.GetQuote(ctx, "p")
	if err != nil {
		t.Fatal(err)
	}
	if !q.Rate.Equal(decimal.NewFromInt(2)) {
		t.Errorf("rate = %s, want 2 after save", q.Rate)
	}
	if primary.reads != 2 {
		t.Errorf("primary reads = %d, want 2", primary.reads)
	}
}

func TestCachedQuoteRepositoryMissNotCached(t *testing.T) {
	rdb := newFakeRedis()
	repo := NewCachedQuoteRepository(NewMemoryQuoteRepository(), rdb, time.Minute)

	_, err := repo.GetQuote(context.Background(), "missing")
	if !errors.Is(err, ErrQuoteNotFound) {
		t.Fatalf("error = %v, want ErrQuoteNotFound", err)
	}
	if len(rdb.data) != 0 {
		t.Errorf("cache = %v, want empty", rdb.data)
	}
}
