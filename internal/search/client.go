package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrProvider is returned when the search provider cannot be reached after
// all retries are exhausted. It is fatal to a search-seeded run.
var ErrProvider = errors.New("search provider failure")

const defaultEndpoint = "https://html.duckduckgo.com/html/"

// Client fetches result links from DuckDuckGo's HTML endpoint with bounded
// retries. Rate limiting mid-stream is retried with backoff and then surfaced
// as ErrProvider.
type Client struct {
	httpClient *http.Client
	endpoint   string
	maxRetries int
	retryDelay time.Duration
	maxResults int
	userAgent  string
}

// Option customizes a Client.
type Option func(*Client)

// WithEndpoint overrides the provider endpoint (used in tests).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithRetries sets the retry budget and base backoff delay.
func WithRetries(max int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = max
		c.retryDelay = delay
	}
}

// WithMaxResults caps how many result links a search returns. Zero means
// unlimited.
func WithMaxResults(n int) Option {
	return func(c *Client) { c.maxResults = n }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a search client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   defaultEndpoint,
		maxRetries: 3,
		retryDelay: time.Second,
		userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search issues the composed query and returns result URLs in provider order.
func (c *Client) Search(ctx context.Context, q Query) ([]string, error) {
	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("search attempt failed, retrying",
				"attempt", attempt, "delay", delay, "err", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrProvider, ctx.Err())
			}
			delay *= 2
		}

		links, err := c.fetch(ctx, q)
		if err == nil {
			return links, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %v", ErrProvider, lastErr)
}

func (c *Client) fetch(ctx context.Context, q Query) ([]string, error) {
	params := url.Values{}
	params.Set("q", q.Terms)
	for key, vals := range q.Params {
		for _, v := range vals {
			params.Add(key, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}

	var links []string
	doc.Find("a.result__a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		if resolved := resolveResultURL(href); resolved != "" {
			links = append(links, resolved)
		}
	})

	if c.maxResults > 0 && len(links) > c.maxResults {
		links = links[:c.maxResults]
	}

	return links, nil
}

// resolveResultURL unwraps DuckDuckGo's redirect links (/l/?uddg=<target>)
// into the target URL. Plain links pass through unchanged.
func resolveResultURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasPrefix(u.Path, "/l/") {
		target := u.Query().Get("uddg")
		if target == "" {
			return ""
		}
		return target
	}
	return href
}
