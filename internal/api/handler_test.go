package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mtlprog/knownorigin/internal/domain"
	"github.com/mtlprog/knownorigin/internal/market"
	"github.com/mtlprog/knownorigin/internal/price"
)

type mockLister struct {
	result market.Result
	total  int
	asset  domain.Asset
	order  *domain.Order
	err    error

	lastParams  domain.Params
	lastFilters *domain.Filters
	lastTokenID string
}

func (m *mockLister) Fetch(_ context.Context, params domain.Params, filters *domain.Filters) (market.Result, error) {
	m.lastParams = params
	m.lastFilters = filters
	return m.result, m.err
}

func (m *mockLister) Count(_ context.Context, params domain.Params, filters *domain.Filters) (int, error) {
	m.lastParams = params
	m.lastFilters = filters
	return m.total, m.err
}

func (m *mockLister) FetchOne(_ context.Context, _, tokenID string, filters *domain.Filters) (domain.Asset, *domain.Order, error) {
	m.lastTokenID = tokenID
	m.lastFilters = filters
	return m.asset, m.order, m.err
}

func TestListNFTsDefaults(t *testing.T) {
	lister := &mockLister{result: market.Result{
		Assets:   []domain.Asset{{ID: "0xc-1"}},
		Accounts: []domain.Account{},
		Orders:   []domain.Order{},
		Total:    1,
	}}
	handler := NewHandler(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nfts", nil)
	w := httptest.NewRecorder()
	handler.ListNFTs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if lister.lastParams.First != DefaultPageSize || lister.lastParams.Skip != 0 {
		t.Errorf("params = %+v, want first=%d skip=0", lister.lastParams, DefaultPageSize)
	}
	if lister.lastFilters != nil {
		t.Errorf("filters = %+v, want nil", lister.lastFilters)
	}

	var result market.Result
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || len(result.Assets) != 1 || result.Assets[0].ID != "0xc-1" {
		t.Errorf("result = %+v", result)
	}
}

func TestListNFTsFirstCapped(t *testing.T) {
	lister := &mockLister{}
	handler := NewHandler(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nfts?first=5000&skip=10&isToken=true", nil)
	w := httptest.NewRecorder()
	handler.ListNFTs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if lister.lastParams.First != domain.MaxPageSize {
		t.Errorf("first = %d, want %d (should be capped)", lister.lastParams.First, domain.MaxPageSize)
	}
	if lister.lastParams.Skip != 10 {
		t.Errorf("skip = %d, want 10", lister.lastParams.Skip)
	}
	if lister.lastFilters == nil || !lister.lastFilters.IsToken {
		t.Errorf("filters = %+v, want isToken", lister.lastFilters)
	}
}

func TestListNFTsInvalidQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"zero first", "first=0"},
		{"negative skip", "skip=-1"},
		{"non numeric first", "first=abc"},
		{"bad isToken", "isToken=maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(&mockLister{})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/nfts?"+tt.query, nil)
			w := httptest.NewRecorder()
			handler.ListNFTs(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestListNFTsUpstreamError(t *testing.T) {
	handler := NewHandler(&mockLister{err: errors.New("subgraph down")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nfts", nil)
	w := httptest.NewRecorder()
	handler.ListNFTs(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestCountNFTs(t *testing.T) {
	lister := &mockLister{total: 42}
	handler := NewHandler(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nfts/count", nil)
	w := httptest.NewRecorder()
	handler.CountNFTs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if lister.lastFilters != nil {
		t.Errorf("filters = %+v, want nil so both sources are counted", lister.lastFilters)
	}
	var body CountResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 42 {
		t.Errorf("total = %d, want 42", body.Total)
	}
}

func TestGetNFTSuccess(t *testing.T) {
	order := &domain.Order{ID: "KNOWN_ORIGIN-order-7", Price: "2.05"}
	lister := &mockLister{
		asset: domain.Asset{ID: "0xc-7", TokenID: "7", ActiveOrderID: order.ID},
		order: order,
	}
	handler := NewHandler(lister)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nfts/0xc/7", nil)
	req.SetPathValue("contract", "0xc")
	req.SetPathValue("tokenId", "7")
	w := httptest.NewRecorder()
	handler.GetNFT(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if lister.lastTokenID != "7" {
		t.Errorf("token id = %q, want 7", lister.lastTokenID)
	}
	var body NFTResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Order == nil || body.Order.Price != "2.05" {
		t.Errorf("order = %+v, want price 2.05", body.Order)
	}
}

func TestGetNFTInvalidTokenID(t *testing.T) {
	handler := NewHandler(&mockLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nfts/0xc/abc", nil)
	req.SetPathValue("contract", "0xc")
	req.SetPathValue("tokenId", "abc")
	w := httptest.NewRecorder()
	handler.GetNFT(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("%w: 7", market.ErrNotFound), http.StatusNotFound},
		{"precondition", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"no price", fmt.Errorf("rate: %w", price.ErrNoPrice), http.StatusServiceUnavailable},
		{"bad shape", &domain.UnrecognizedShapeError{Type: "AUCTION"}, http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
