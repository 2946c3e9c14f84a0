package export

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/knownorigin/internal/domain"
)

// summaryHeader names the columns of the daily SUMMARY row.
var summaryHeader = []any{"Date", "Listings", "Editions", "Tokens", "Open orders", "Owners", "Floor price", "Average price", "Total listed value"}

// buildSummaryRow aggregates one day of listings. Price columns are empty when no order is open.
func buildSummaryRow(rows []ListingRow, at time.Time) []any {
	editions := lo.CountBy(rows, func(r ListingRow) bool { return r.Kind == domain.FragmentTypeEdition })
	owners := len(lo.Uniq(lo.Map(rows, func(r ListingRow, _ int) string { return r.Owner })))

	prices := lo.FilterMap(rows, func(r ListingRow, _ int) (decimal.Decimal, bool) {
		if r.Status != domain.OrderStatusOpen {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(r.Price)
		return d, err == nil
	})

	row := []any{
		at.UTC().Format("2006-01-02"),
		len(rows),
		editions,
		len(rows) - editions,
		len(prices),
		owners,
		nil, nil, nil,
	}
	if len(prices) == 0 {
		return row
	}

	total := decimal.Sum(prices[0], prices[1:]...)
	row[6] = decimal.Min(prices[0], prices[1:]...).String()
	row[7] = total.DivRound(decimal.NewFromInt(int64(len(prices))), domain.ReferenceDecimals).String()
	row[8] = total.String()
	return row
}
