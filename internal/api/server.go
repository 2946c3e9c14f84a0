package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mtlprog/knownorigin/internal/metrics"
)

type contextKey string

// RequestIDKey is the context key holding the request id.
const RequestIDKey contextKey = "requestID"

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, listings Lister) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(listings),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewRouter wires the routes and middleware. Metrics run inside the request id middleware so
// they observe the pattern ServeMux records on the request.
func NewRouter(listings Lister) http.Handler {
	handler := NewHandler(listings)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/nfts", handler.ListNFTs)
	mux.HandleFunc("GET /api/v1/nfts/count", handler.CountNFTs)
	mux.HandleFunc("GET /api/v1/nfts/{contract}/{tokenId}", handler.GetNFT)

	return requestID(metrics.Middleware(mux))
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RequestIDKey, id)))
	})
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
