package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"hnletter/internal/core"
	"hnletter/internal/extract"
	"hnletter/internal/logger"
)

// DefaultUserAgent is a realistic desktop browser identity. Some article
// hosts refuse obviously scripted clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxBodyBytes bounds how much of a response we read. Pages past this size
// would be truncated by the extractor anyway.
const maxBodyBytes = 4 << 20

// Client fetches HTML pages with a fixed timeout and User-Agent.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient swaps the underlying HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a page fetcher with a 10 second default timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Page fetches a single HTML page and returns its body as a string. A
// timeout, connection failure, or non-2xx status is returned as an error;
// the caller decides whether that is fatal.
func (c *Client) Page(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid URL %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body from %s: %w", pageURL, err)
	}
	return string(body), nil
}

// Details fetches and extracts both sides of one candidate: the article page
// and its discussion page. The two sides fail independently; a failed side
// degrades to an empty string and is logged with its URL and cause. Details
// never returns an error.
func (c *Client) Details(ctx context.Context, articleURL, commentsURL string) core.ScrapedContent {
	var content core.ScrapedContent

	if html, err := c.Page(ctx, articleURL); err != nil {
		logger.Get().Warn().Str("url", articleURL).Err(err).Msg("article fetch failed")
	} else {
		content.ArticleText = extract.ArticleText(html, articleURL)
	}

	if html, err := c.Page(ctx, commentsURL); err != nil {
		logger.Get().Warn().Str("url", commentsURL).Err(err).Msg("comments fetch failed")
	} else {
		content.CommentsText = extract.CommentsText(html)
	}

	return content
}
