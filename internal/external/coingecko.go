package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Default CoinGecko ids for the native and reference currencies.
const (
	DefaultNativeCoinID    = "ethereum"
	DefaultReferenceCoinID = "decentraland"
)

// rateDecimals is the precision of a derived cross rate.
const rateDecimals = 18

// ErrMissingPrice is returned when CoinGecko omits one of the requested coins.
var ErrMissingPrice = errors.New("coingecko: price missing")

// CoinGeckoClient fetches prices from the CoinGecko API.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	delay      time.Duration
	maxRetries int
}

// NewCoinGeckoClient creates a new CoinGecko API client.
func NewCoinGeckoClient(baseURL string, delay time.Duration, maxRetries int) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		delay:      delay,
		maxRetries: maxRetries,
	}
}

// FetchUSDPrices returns the USD price of each coin id.
func (c *CoinGeckoClient) FetchUSDPrices(ctx context.Context, ids ...string) (map[string]decimal.Decimal, error) {
	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")

	body, err := c.fetchWithRetry(ctx, c.baseURL+"/simple/price?"+params.Encode())
	if err != nil {
		return nil, err
	}

	// {"ethereum":{"usd":2500.12},"decentraland":{"usd":0.41}}
	var raw map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing CoinGecko response: %w", err)
	}

	result := make(map[string]decimal.Decimal, len(ids))
	for _, id := range ids {
		price, ok := raw[id]["usd"]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingPrice, id)
		}
		result[id] = price
	}
	return result, nil
}

// FetchRate returns how many reference coins one native coin buys, crossed through USD.
func (c *CoinGeckoClient) FetchRate(ctx context.Context, nativeID, referenceID string) (decimal.Decimal, error) {
	prices, err := c.FetchUSDPrices(ctx, nativeID, referenceID)
	if err != nil {
		return decimal.Zero, err
	}
	ref := prices[referenceID]
	if !ref.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive %s price %s", ErrMissingPrice, referenceID, ref)
	}
	return prices[nativeID].DivRound(ref, rateDecimals), nil
}

func (c *CoinGeckoClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			baseDelay := c.delay
			if baseDelay == 0 {
				baseDelay = 10 * time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating CoinGecko request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("CoinGecko request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading CoinGecko response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("CoinGecko rate limited (attempt %d/%d)", attempt+1, c.maxRetries+1)
			continue
		}

		return nil, fmt.Errorf("CoinGecko HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}
