package external

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// RateFetcher loads a live cross rate between two coins.
type RateFetcher interface {
	FetchRate(ctx context.Context, nativeID, referenceID string) (decimal.Decimal, error)
}

// Service converts native amounts into the reference currency using stored quotes,
// refreshing them from CoinGecko when they are missing or stale.
type Service struct {
	fetcher     RateFetcher
	repo        QuoteRepository
	nativeID    string
	referenceID string
	staleAfter  time.Duration
	now         func() time.Time
}

// NewService creates a new external rate Service.
func NewService(fetcher RateFetcher, repo QuoteRepository, nativeID, referenceID string, staleAfter time.Duration) *Service {
	return &Service{
		fetcher:     fetcher,
		repo:        repo,
		nativeID:    nativeID,
		referenceID: referenceID,
		staleAfter:  staleAfter,
		now:         time.Now,
	}
}

// Pair is the repository key of the configured rate, e.g. "ethereum/decentraland".
func (s *Service) Pair() string {
	return s.nativeID + "/" + s.referenceID
}

// FetchAndStoreQuotes fetches the live rate and stores it.
func (s *Service) FetchAndStoreQuotes(ctx context.Context) error {
	_, err := s.refresh(ctx)
	return err
}

// ConvertNativeToReference expresses amount native units in the reference currency.
func (s *Service) ConvertNativeToReference(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	rate, err := s.rate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

func (s *Service) rate(ctx context.Context) (decimal.Decimal, error) {
	q, err := s.repo.GetQuote(ctx, s.Pair())
	switch {
	case err == nil && s.now().Sub(q.UpdatedAt) <= s.staleAfter:
		return q.Rate, nil
	case err == nil:
		slog.Debug("stored quote is stale, refreshing", "pair", s.Pair(), "updatedAt", q.UpdatedAt)
	case errors.Is(err, ErrQuoteNotFound):
	default:
		return decimal.Zero, fmt.Errorf("reading stored quote: %w", err)
	}
	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) (decimal.Decimal, error) {
	rate, err := s.fetcher.FetchRate(ctx, s.nativeID, s.referenceID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetching %s rate: %w", s.Pair(), err)
	}
	if err := s.repo.SaveQuote(ctx, s.Pair(), rate); err != nil {
		return decimal.Zero, fmt.Errorf("storing %s rate: %w", s.Pair(), err)
	}
	return rate, nil
}
