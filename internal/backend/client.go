// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Rodrigoaguilar-sf/Markyt-AI-agent/internal/model"
)

const (
	// DefaultBaseURL is where the Markyt API listens in development.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds a single request. Completions run an agent loop
	// on the server and can take a while.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries applies to idempotent GETs only.
	DefaultMaxRetries = 2

	// DefaultRetryDelay is the base of the exponential backoff.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultRequestsPerSecond and DefaultBurst shape outgoing requests.
	DefaultRequestsPerSecond = 5.0
	DefaultBurst             = 10

	retryMaxDelay   = 10 * time.Second
	maxResponseSize = 10 * 1024 * 1024
	userAgent       = "markyt-cli"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the API base URL (default: http://localhost:8000)
	BaseURL string

	// Timeout for a single request (default: 60s)
	Timeout time.Duration

	// MaxRetries for transient failures on GET requests (default: 2).
	// Negative disables retries.
	MaxRetries int

	// RetryDelay is the first backoff step (default: 500ms)
	RetryDelay time.Duration

	// RequestsPerSecond and Burst configure the request limiter.
	RequestsPerSecond float64
	Burst             int

	// Verbose logs every request with its status and duration.
	Verbose bool

	// HTTPClient overrides the transport. Timeout is ignored when set.
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           DefaultBaseURL,
		Timeout:           DefaultTimeout,
		MaxRetries:        DefaultMaxRetries,
		RetryDelay:        DefaultRetryDelay,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Burst:             DefaultBurst,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Markyt API: chat completions, quotes and chart history.
//
// The Client is safe for concurrent use.
//
// Example:
//
//	client := backend.NewClient()
//	reply, err := client.Complete(ctx, "How is AAPL doing?", history)
//	quote, err := client.Quote(ctx, "AAPL")
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	// Fill in defaults for any zero values
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		config:     &cfg,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// BaseURL returns the API base URL in use.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Ping verifies that the API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "health check", http.MethodGet, "/", nil, nil, 0)
}

// =============================================================================
// CHAT
// =============================================================================

// Complete sends one user message and the prior transcript to POST /api/chat
// and returns the assistant reply. It is never retried: the server runs
// tools on every call.
func (c *Client) Complete(ctx context.Context, message string, history []model.Message) (string, error) {
	if history == nil {
		history = []model.Message{}
	}
	body, err := json.Marshal(ChatRequest{Message: message, History: history})
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	var result struct {
		Response *string `json:"response"`
	}
	if err := c.do(ctx, "chat request", http.MethodPost, "/api/chat", body, &result, 0); err != nil {
		return "", err
	}
	if result.Response == nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "chat response has no reply"}
	}
	return *result.Response, nil
}

// =============================================================================
// QUOTES
// =============================================================================

// Quote fetches the latest price for symbol from GET /api/quote/{symbol}.
func (c *Client) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	if symbol == "" {
		return model.Quote{}, errors.New("symbol is required")
	}

	var result quoteResponse
	path := "/api/quote/" + url.PathEscape(symbol)
	if err := c.do(ctx, "quote request", http.MethodGet, path, nil, &result, c.config.MaxRetries); err != nil {
		return model.Quote{}, err
	}
	if result.CurrentPrice == nil {
		return model.Quote{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "quote for " + symbol + " has no price"}
	}

	q := model.Quote{
		Symbol:        symbol,
		Name:          result.CompanyName,
		Price:         *result.CurrentPrice,
		Change:        result.Change,
		ChangePercent: result.ChangePercent,
		PreviousClose: result.PreviousClose,
		Currency:      result.Currency,
		FetchedAt:     time.Now(),
	}
	if q.Currency == "" {
		q.Currency = model.DefaultCurrency
	}
	if q.Change.IsZero() && !q.PreviousClose.IsZero() {
		q.Change = q.Price.Sub(q.PreviousClose)
		q.ChangePercent = q.Change.Div(q.PreviousClose).Shift(2).Round(2)
	}
	return q, nil
}

// QuoteResult is one entry of Quotes.
type QuoteResult struct {
	Symbol string
	Quote  model.Quote
	Err    error
}

// Quotes fetches several symbols concurrently. Failures are reported per
// symbol; results keep the order of symbols.
func (c *Client) Quotes(ctx context.Context, symbols []string) []QuoteResult {
	results := make([]QuoteResult, len(symbols))
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			q, err := c.Quote(ctx, sym)
			results[i] = QuoteResult{Symbol: sym, Quote: q, Err: err}
		}(i, sym)
	}
	wg.Wait()
	return results
}

// =============================================================================
// CHARTS
// =============================================================================

// Chart fetches price history from GET /api/chart/{symbol}. Empty period and
// interval fall back to model.DefaultChartPeriod and model.DefaultChartInterval.
func (c *Client) Chart(ctx context.Context, symbol, period, interval string) (model.ChartSeries, error) {
	if symbol == "" {
		return model.ChartSeries{}, errors.New("symbol is required")
	}
	if period == "" {
		period = model.DefaultChartPeriod
	}
	if !model.ValidChartPeriod(period) {
		return model.ChartSeries{}, fmt.Errorf("invalid chart period %q (want one of %s)", period, strings.Join(model.ChartPeriods, ", "))
	}
	if interval == "" {
		interval = model.DefaultChartInterval
	}

	query := url.Values{}
	query.Set("period", period)
	query.Set("interval", interval)
	path := "/api/chart/" + url.PathEscape(symbol) + "?" + query.Encode()

	var result chartResponse
	if err := c.do(ctx, "chart request", http.MethodGet, path, nil, &result, c.config.MaxRetries); err != nil {
		return model.ChartSeries{}, err
	}

	series := model.ChartSeries{
		Symbol:        symbol,
		Period:        period,
		Points:        result.Data,
		CurrentPrice:  result.CurrentPrice,
		ChangePercent: result.ChangePercent,
	}
	if series.Points == nil {
		series.Points = []model.ChartPoint{}
	}
	if result.Period != "" {
		series.Period = result.Period
	}
	return series, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do performs a request with up to retries extra attempts for transient
// failures, backing off exponentially between them.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any, retries int) error {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return transportError(ctx.Err())
			case <-time.After(c.backoff(attempt)):
			}
		}

		err := c.doOnce(ctx, op, method, path, body, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryable(ctx, err) {
			return err
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, op, method, path string, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTimeout, Message: "request cancelled while rate limited", Cause: err}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logRequest(method, path, 0, time.Since(start), err)
		return transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	c.logRequest(method, path, resp.StatusCode, time.Since(start), err)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		_ = json.Unmarshal(data, &apiErr)
		return statusError(op, resp.StatusCode, apiErr.message())
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode " + op + " response", Cause: err}
	}
	return nil
}

func (c *Client) logRequest(method, path string, status int, d time.Duration, err error) {
	if !c.config.Verbose {
		return
	}
	if err != nil {
		log.Printf("backend: %s %s failed after %s: %v", method, path, d.Round(time.Millisecond), err)
		return
	}
	log.Printf("backend: %s %s -> %d (%s)", method, path, status, d.Round(time.Millisecond))
}

// backoff returns the delay before the given retry attempt.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.config.RetryDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

func transportError(err error) *ClientError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: "backend is not reachable", Cause: err}
}

// isRetryable reports whether err is transient. Nothing is retried once the
// caller's context is done.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		return false
	}
	switch clientErr.Type {
	case ErrTypeConnection, ErrTypeTimeout, ErrTypeRateLimited:
		return true
	case ErrTypeStatus:
		return clientErr.StatusCode >= 500
	default:
		return false
	}
}
