package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mtlprog/knownorigin/internal/metrics"
)

// QuoteFetcher defines the interface for fetching and storing external quotes.
type QuoteFetcher interface {
	FetchAndStoreQuotes(ctx context.Context) error
}

// QuoteWorker periodically refreshes the stored conversion rate so request paths rarely
// hit CoinGecko directly.
type QuoteWorker struct {
	fetcher  QuoteFetcher
	interval time.Duration
}

// NewQuoteWorker creates a new QuoteWorker.
func NewQuoteWorker(fetcher QuoteFetcher, interval time.Duration) *QuoteWorker {
	return &QuoteWorker{
		fetcher:  fetcher,
		interval: interval,
	}
}

// Run starts the quote worker loop. It blocks until the context is cancelled.
func (w *QuoteWorker) Run(ctx context.Context) {
	slog.Info("QuoteWorker: starting", "interval", w.interval)

	w.refresh(ctx, "initial fetch")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("QuoteWorker: shutting down")
			return
		case <-ticker.C:
			w.refresh(ctx, "fetch")
		}
	}
}

func (w *QuoteWorker) refresh(ctx context.Context, what string) {
	err := w.fetcher.FetchAndStoreQuotes(ctx)
	metrics.QuoteRefreshes.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		slog.Error("QuoteWorker: "+what+" failed", "error", err)
		return
	}
	slog.Info("QuoteWorker: " + what + " completed")
}
