// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/totalreturn/internal/common"
	"github.com/bobmcallan/totalreturn/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
	DefaultExchange  = "US"
)

// Client fetches quotes and daily close histories from EODHD. It
// implements interfaces.PriceProvider.
type Client struct {
	baseURL    string
	apiKey     string
	exchange   string
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

// WithExchange sets the exchange suffix appended to bare tickers
func WithExchange(exchange string) ClientOption {
	return func(c *Client) {
		c.exchange = exchange
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		apiKey:   apiKey,
		exchange: DefaultExchange,
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
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// qualifySymbol appends the exchange suffix EODHD expects on bare tickers.
func (c *Client) qualifySymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimPrefix(s, "$")
	if s == "" || strings.Contains(s, ".") {
		return s
	}
	return s + "." + c.exchange
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// realTimeResponse represents the API response for real-time quotes.
// The API returns "NA" strings for unknown tickers, hence flexFloat64.
type realTimeResponse struct {
	Code      string      `json:"code"`
	Close     flexFloat64 `json:"close"`
	Timestamp int64       `json:"timestamp"`
}

// CurrentPrice returns the latest available price for a symbol.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (float64, bool, error) {
	qualified := c.qualifySymbol(symbol)
	if qualified == "" {
		return 0, false, nil
	}

	path := fmt.Sprintf("/real-time/%s", url.PathEscape(qualified))

	var resp realTimeResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	if resp.Close <= 0 {
		return 0, false, nil
	}
	return float64(resp.Close), true, nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string      `json:"date"`
	Close         flexFloat64 `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
}

// History returns per-symbol daily close series covering [from, to].
// Symbols that fail are skipped, not fatal: partial results are the
// contract.
func (c *Client) History(ctx context.Context, symbols []string, from, to time.Time) (map[string][]models.PriceBar, error) {
	out := make(map[string][]models.PriceBar, len(symbols))
	for _, symbol := range symbols {
		bars, err := c.history(ctx, symbol, from, to)
		if err != nil {
			c.logger.Warn().Err(err).Str("symbol", symbol).Msg("EOD fetch failed")
			continue
		}
		if len(bars) > 0 {
			out[symbol] = bars
		}
	}
	return out, nil
}

func (c *Client) history(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	qualified := c.qualifySymbol(symbol)
	if qualified == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))

	path := fmt.Sprintf("/eod/%s", url.PathEscape(qualified))

	var raw []eodBarResponse
	if err := c.get(ctx, path, params, &raw); err != nil {
		return nil, err
	}

	bars := make([]models.PriceBar, 0, len(raw))
	for _, bar := range raw {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			continue
		}
		close := float64(bar.AdjustedClose)
		if close <= 0 {
			close = float64(bar.Close)
		}
		if close <= 0 {
			continue
		}
		bars = append(bars, models.PriceBar{Date: date, Close: close})
	}
	return bars, nil
}
