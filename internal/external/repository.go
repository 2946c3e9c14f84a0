package external

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrQuoteNotFound is returned when no quote has been stored for a pair.
var ErrQuoteNotFound = errors.New("quote not found")

// Quote is a stored conversion rate: one unit of the pair's base in units of its quote currency.
type Quote struct {
	Pair      string          `json:"pair"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// QuoteRepository defines persistent storage for external quotes.
type QuoteRepository interface {
	SaveQuote(ctx context.Context, pair string, rate decimal.Decimal) error
	GetQuote(ctx context.Context, pair string) (Quote, error)
	GetAllQuotes(ctx context.Context) ([]Quote, error)
}

// PgQuoteRepository implements QuoteRepository with PostgreSQL.
type PgQuoteRepository struct {
	pool *pgxpool.Pool
}

// NewPgQuoteRepository creates a new PostgreSQL quote repository.
func NewPgQuoteRepository(pool *pgxpool.Pool) *PgQuoteRepository {
	return &PgQuoteRepository{pool: pool}
}

func (r *PgQuoteRepository) SaveQuote(ctx context.Context, pair string, rate decimal.Decimal) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO external_quotes (pair, rate, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (pair) DO UPDATE SET rate = $2, updated_at = NOW()`,
		pair, rate)
	if err != nil {
		return fmt.Errorf("saving quote for %s: %w", pair, err)
	}
	return nil
}

func (r *PgQuoteRepository) GetQuote(ctx context.Context, pair string) (Quote, error) {
	var q Quote
	err := r.pool.QueryRow(ctx,
		`SELECT pair, rate, updated_at FROM external_quotes WHERE pair = $1`,
		pair).Scan(&q.Pair, &q.Rate, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Quote{}, fmt.Errorf("%w: %s", ErrQuoteNotFound, pair)
	}
	if err != nil {
		return Quote{}, fmt.Errorf("getting quote for %s: %w", pair, err)
	}
	return q, nil
}

func (r *PgQuoteRepository) GetAllQuotes(ctx context.Context) ([]Quote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT pair, rate, updated_at FROM external_quotes ORDER BY pair`)
	if err != nil {
		return nil, fmt.Errorf("getting all quotes: %w", err)
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		var q Quote
		if err := rows.Scan(&q.Pair, &q.Rate, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
