// Package subgraph reads KnownOrigin tokens and editions from the GraphQL subgraph.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mtlprog/knownorigin/internal/metrics"
)

// Client is a GraphQL-over-HTTP client with retry on 429 and a circuit breaker.
type Client struct {
	endpoint   string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a new subgraph client.
func NewClient(endpoint string, maxRetries int, baseDelay time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "subgraph",
			MaxRequests: 5,
			Interval:    30 * time.Second,
			Timeout:     60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < 5 {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.8
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("subgraph circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// GraphQLError is one entry of a GraphQL "errors" array.
type GraphQLError struct {
	Message string `json:"message"`
}

// QueryError reports errors returned in a successful HTTP response.
type QueryError struct {
	Errors []GraphQLError
}

func (e *QueryError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = ge.Message
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// query runs a GraphQL query and unmarshals its data block into dest.
func (c *Client) query(ctx context.Context, q string, vars map[string]any, dest any) error {
	payload, err := json.Marshal(graphQLRequest{Query: q, Variables: vars})
	if err != nil {
		return fmt.Errorf("encoding query: %w", err)
	}

	raw, err := c.breaker.Execute(func() (any, error) {
		return c.post(ctx, payload)
	})
	metrics.SubgraphRequests.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(raw.([]byte), &resp); err != nil {
		return fmt.Errorf("parsing GraphQL response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return &QueryError{Errors: resp.Errors}
	}
	if err := json.Unmarshal(resp.Data, dest); err != nil {
		return fmt.Errorf("parsing GraphQL data: %w", err)
	}
	return nil
}

// post sends payload with retry on 429.
func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("HTTP 429 at %s (attempt %d/%d)", c.endpoint, attempt+1, c.maxRetries+1)
			if attempt < c.maxRetries {
				delay := c.baseDelay * time.Duration(1<<uint(attempt))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, lastErr
		}

		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, c.endpoint, string(body))
	}

	return nil, lastErr
}
