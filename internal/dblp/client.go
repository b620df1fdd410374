// Package dblp queries the DBLP publication search API for canonical
// author names.
package dblp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/avila/confgraph/internal/names"
)

const (
	// BaseURL is the DBLP publication search endpoint.
	BaseURL = "https://dblp.org/search/publ/api"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit keeps well under DBLP's courtesy limit.
	RateLimit = 2.0

	// DefaultHitLimit is how many search hits to request per lookup.
	DefaultHitLimit = 30
)

// Client is a rate-limited HTTP client for the DBLP search API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	hitLimit   int
	log        *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRateLimit sets the request budget per second.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithHitLimit sets how many hits to request per search.
func WithHitLimit(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.hitLimit = n
		}
	}
}

// NewClient creates a DBLP search client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		hitLimit:   DefaultHitLimit,
		log:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Search runs a publication search and returns the raw hits.
func (c *Client) Search(ctx context.Context, query string) ([]Hit, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("h", strconv.Itoa(c.hitLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrInvalidResponse, err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parsing search results: %v", ErrInvalidResponse, err)
	}

	c.log.Debug("search completed",
		zap.String("query", query), zap.Int("hits", len(parsed.Result.Hits.Hit)))
	return parsed.Result.Hits.Hit, nil
}

// CandidateAuthors looks up the publication best matching title and
// returns its author names. When year is positive, hits from other
// years are ignored. Among the remaining hits the one with the highest
// title similarity wins; ties keep the first hit encountered. An empty
// slice means no hit qualified; callers treat that the same as any
// lookup error.
func (c *Client) CandidateAuthors(ctx context.Context, title string, year int) ([]string, error) {
	hits, err := c.Search(ctx, title)
	if err != nil {
		return nil, err
	}

	var (
		best    []string
		bestSim float64
	)
	for _, hit := range hits {
		if year > 0 && hit.Info.Year != strconv.Itoa(year) {
			continue
		}
		if len(hit.Info.Authors.Names) == 0 {
			continue
		}
		if sim := names.Similarity(title, hit.Info.Title); sim > bestSim {
			best = hit.Info.Authors.Names
			bestSim = sim
		}
	}

	return best, nil
}
