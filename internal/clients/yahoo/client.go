// Package yahoo provides a Yahoo Finance chart API client
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/totalreturn/internal/common"
	"github.com/bobmcallan/totalreturn/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// symbolAliases remaps tickers where Yahoo uses a different code.
var symbolAliases = map[string]string{}

// Client fetches quotes and daily close histories from the Yahoo Finance
// v8 chart endpoint. It implements interfaces.PriceProvider.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// cleanSymbol maps an export ticker to Yahoo's form: uppercased, currency
// prefix stripped, dots replaced with dashes (BRK.B -> BRK-B).
func cleanSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimPrefix(s, "$")
	if alias, ok := symbolAliases[s]; ok {
		return alias
	}
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ".", "-")
	}
	return s
}

// chartResponse mirrors the subset of the v8 chart payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// getChart performs a rate-limited GET against the chart endpoint.
func (c *Client) getChart(ctx context.Context, symbol string, params url.Values) (*chartResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol))
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "totalreturn/"+common.GetVersion())

	c.logger.Debug().Str("symbol", symbol).Msg("Yahoo chart request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Chart.Error != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    result.Chart.Error.Description,
			Endpoint:   path,
		}
	}
	return &result, nil
}

// CurrentPrice returns the latest market price for a symbol. A few days of
// daily bars are requested so a stale or halted symbol still yields its
// last valid close when the meta price is absent.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (float64, bool, error) {
	cleaned := cleanSymbol(symbol)
	if cleaned == "" {
		return 0, false, nil
	}

	params := url.Values{}
	params.Set("range", "5d")
	params.Set("interval", "1d")

	resp, err := c.getChart(ctx, cleaned, params)
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	if len(resp.Chart.Result) == 0 {
		return 0, false, nil
	}

	result := resp.Chart.Result[0]
	if result.Meta.RegularMarketPrice > 0 {
		return result.Meta.RegularMarketPrice, true, nil
	}

	// Fall back to the last valid close.
	if len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil && *closes[i] > 0 {
				return *closes[i], true, nil
			}
		}
	}
	return 0, false, nil
}

// History returns per-symbol daily close series covering [from, to].
// Symbols that fail are skipped, not fatal: partial results are the
// contract.
func (c *Client) History(ctx context.Context, symbols []string, from, to time.Time) (map[string][]models.PriceBar, error) {
	out := make(map[string][]models.PriceBar, len(symbols))
	for _, symbol := range symbols {
		bars, err := c.history(ctx, symbol, from, to)
		if err != nil {
			c.logger.Warn().Err(err).Str("symbol", symbol).Msg("History fetch failed")
			continue
		}
		if len(bars) > 0 {
			out[symbol] = bars
		}
	}
	return out, nil
}

func (c *Client) history(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	cleaned := cleanSymbol(symbol)
	if cleaned == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", fmt.Sprintf("%d", from.Unix()))
	// period2 is exclusive; push it past the end of the final day.
	params.Set("period2", fmt.Sprintf("%d", to.AddDate(0, 0, 1).Unix()))

	resp, err := c.getChart(ctx, cleaned, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	closes := result.Indicators.Quote[0].Close

	var bars []models.PriceBar
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		bars = append(bars, models.PriceBar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}
	return bars, nil
}
