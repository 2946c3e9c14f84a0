// Package export flattens normalized listings into spreadsheet rows.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/mtlprog/knownorigin/internal/domain"
	"github.com/mtlprog/knownorigin/internal/market"
)

// ListingRow is one asset with its active order, if any.
type ListingRow struct {
	AssetID     string
	TokenID     string
	Kind        domain.FragmentType
	Name        string
	Owner       string
	URL         string
	OrderID     string
	Price       string
	NativePrice string
	Status      domain.OrderStatus
}

// SheetWriter writes listing rows to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, rows []ListingRow) error
}

// Lister is the aggregation pipeline subset the exporter pages through.
type Lister interface {
	Fetch(ctx context.Context, params domain.Params, filters *domain.Filters) (market.Result, error)
}

// Service pages through every edition and token and hands the rows to a SheetWriter.
type Service struct {
	lister   Lister
	writer   SheetWriter
	pageSize int
}

// NewService creates a new export Service.
func NewService(lister Lister, writer SheetWriter, pageSize int) *Service {
	if pageSize <= 0 || pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}
	return &Service{lister: lister, writer: writer, pageSize: pageSize}
}

// Export collects all listings and writes them.
func (s *Service) Export(ctx context.Context) error {
	editions, err := s.collect(ctx, nil)
	if err != nil {
		return fmt.Errorf("collecting editions: %w", err)
	}
	tokens, err := s.collect(ctx, &domain.Filters{IsToken: true})
	if err != nil {
		return fmt.Errorf("collecting tokens: %w", err)
	}

	rows := append(editions, tokens...)
	slog.Info("export: writing listings", "editions", len(editions), "tokens", len(tokens))
	return s.writer.Write(ctx, rows)
}

// collect pages through one source until a short page comes back.
func (s *Service) collect(ctx context.Context, filters *domain.Filters) ([]ListingRow, error) {
	kind := filters.SelectedType()
	var rows []ListingRow
	for skip := 0; ; skip += s.pageSize {
		result, err := s.lister.Fetch(ctx, domain.Params{First: s.pageSize, Skip: skip}, filters)
		if err != nil {
			return nil, err
		}
		rows = append(rows, BuildRows(result, kind)...)
		if len(result.Assets) < s.pageSize {
			return rows, nil
		}
	}
}

// BuildRows joins each asset of result with its active order.
func BuildRows(result market.Result, kind domain.FragmentType) []ListingRow {
	orders := lo.KeyBy(result.Orders, func(o domain.Order) string { return o.ID })

	return lo.Map(result.Assets, func(a domain.Asset, _ int) ListingRow {
		row := ListingRow{
			AssetID: a.ID,
			TokenID: a.TokenID,
			Kind:    kind,
			Name:    a.Name,
			Owner:   a.Owner,
			URL:     a.URL,
		}
		if o, ok := orders[a.ActiveOrderID]; ok {
			row.OrderID = o.ID
			row.Price = o.Price
			row.NativePrice = o.NativePrice
			row.Status = o.Status
		}
		return row
	})
}

var listingHeader = []any{"Asset ID", "Token ID", "Kind", "Name", "Owner", "URL", "Order ID", "Price", "Price (wei)", "Status"}

// listingValues renders rows as a header plus one line per listing. Prices stay strings to
// keep full precision.
func listingValues(rows []ListingRow) [][]any {
	data := make([][]any, 0, len(rows)+1)
	data = append(data, listingHeader)
	for _, r := range rows {
		data = append(data, []any{
			r.AssetID, r.TokenID, string(r.Kind), r.Name, r.Owner, r.URL,
			r.OrderID, r.Price, r.NativePrice, string(r.Status),
		})
	}
	return data
}
