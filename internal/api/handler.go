package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mtlprog/knownorigin/internal/domain"
	"github.com/mtlprog/knownorigin/internal/market"
	"github.com/mtlprog/knownorigin/internal/price"
)

// DefaultPageSize is the page size used when the request does not set first.
const DefaultPageSize = 24

// Lister is the read side of the aggregation pipeline.
type Lister interface {
	Fetch(ctx context.Context, params domain.Params, filters *domain.Filters) (market.Result, error)
	Count(ctx context.Context, params domain.Params, filters *domain.Filters) (int, error)
	FetchOne(ctx context.Context, contractAddress, tokenID string, filters *domain.Filters) (domain.Asset, *domain.Order, error)
}

// Handler provides HTTP endpoints for the listing API.
type Handler struct {
	listings Lister
}

// NewHandler creates a new API handler.
func NewHandler(listings Lister) *Handler {
	return &Handler{listings: listings}
}

// CountResponse is the body of GET /api/v1/nfts/count.
type CountResponse struct {
	Total int `json:"total"`
}

// NFTResponse is the body of GET /api/v1/nfts/{contract}/{tokenId}.
type NFTResponse struct {
	NFT   domain.Asset  `json:"nft"`
	Order *domain.Order `json:"order"`
}

// ListNFTs handles GET /api/v1/nfts.
func (h *Handler) ListNFTs(w http.ResponseWriter, r *http.Request) {
	params, err := parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.listings.Fetch(r.Context(), params, filters)
	if err != nil {
		h.fail(w, "failed to fetch nfts", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CountNFTs handles GET /api/v1/nfts/count.
func (h *Handler) CountNFTs(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	total, err := h.listings.Count(r.Context(), domain.Params{First: DefaultPageSize}, filters)
	if err != nil {
		h.fail(w, "failed to count nfts", err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Total: total})
}

// GetNFT handles GET /api/v1/nfts/{contract}/{tokenId}.
func (h *Handler) GetNFT(w http.ResponseWriter, r *http.Request) {
	tokenID := r.PathValue("tokenId")
	if _, err := domain.ParseWei(tokenID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid token id")
		return
	}
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	asset, order, err := h.listings.FetchOne(r.Context(), r.PathValue("contract"), tokenID, filters)
	if err != nil {
		h.fail(w, "failed to fetch nft", err, "token_id", tokenID)
		return
	}
	writeJSON(w, http.StatusOK, NFTResponse{NFT: asset, Order: order})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error, attrs ...any) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, append(attrs, "error", err)...)
	}
	writeError(w, status, body)
}

func statusFor(err error) (int, string) {
	var shapeErr *domain.UnrecognizedShapeError
	switch {
	case errors.Is(err, market.ErrNotFound):
		return http.StatusNotFound, "nft not found"
	case domain.IsPrecondition(err):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, price.ErrNoPrice):
		return http.StatusServiceUnavailable, "price unavailable"
	case errors.As(err, &shapeErr):
		return http.StatusBadGateway, "unrecognized upstream data"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream timeout"
	default:
		return http.StatusBadGateway, "upstream error"
	}
}

func parseParams(r *http.Request) (domain.Params, error) {
	params := domain.Params{First: DefaultPageSize}
	q := r.URL.Query()
	if v := q.Get("first"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return params, errors.New("first must be a positive integer")
		}
		params.First = min(n, domain.MaxPageSize)
	}
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return params, errors.New("skip must be a non-negative integer")
		}
		params.Skip = n
	}
	return params, nil
}

// parseFilters returns nil when isToken is absent so Count can cover both sources.
func parseFilters(r *http.Request) (*domain.Filters, error) {
	v := r.URL.Query().Get("isToken")
	if v == "" {
		return nil, nil
	}
	isToken, err := strconv.ParseBool(v)
	if err != nil {
		return nil, errors.New("isToken must be a boolean")
	}
	return &domain.Filters{IsToken: isToken}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
