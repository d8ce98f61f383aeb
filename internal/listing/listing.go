// Package listing discovers newsletter candidates: the ordered (title, URL)
// pairs of a Hacker News front page, or the items of an equivalent RSS feed.
package listing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"hnletter/internal/core"
	"hnletter/internal/logger"
)

// PageFetcher fetches one HTML page.
type PageFetcher interface {
	Page(ctx context.Context, pageURL string) (string, error)
}

// ExtractListings parses a front-page HTML document into an ordered list of
// candidates. It locates the site's story rows (tr.athing with an item id,
// title anchor under span.titleline), resolves relative article URLs against
// baseURL, and derives each discussion URL from the row's item id. Rows whose
// resolved URL is malformed are dropped; total parse failure yields an empty
// list, never an error. Indices are assigned 1-based in document order.
func ExtractListings(html string, baseURL string) []core.Candidate {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var candidates []core.Candidate
	doc.Find("tr.athing").Each(func(_ int, row *goquery.Selection) {
		itemID, ok := row.Attr("id")
		if !ok || itemID == "" {
			return
		}
		link := row.Find("span.titleline a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return
		}

		articleURL, err := base.Parse(href)
		if err != nil || articleURL.Scheme == "" || articleURL.Host == "" {
			return
		}
		commentsURL, err := base.Parse("item?id=" + itemID)
		if err != nil {
			return
		}

		candidates = append(candidates, core.Candidate{
			Index:       len(candidates) + 1,
			Title:       title,
			ArticleURL:  articleURL.String(),
			CommentsURL: commentsURL.String(),
		})
	})

	return candidates
}

// FrontPageSource produces candidates by scraping the front page.
type FrontPageSource struct {
	fetcher PageFetcher
	baseURL string
}

// NewFrontPageSource creates a front-page candidate source.
func NewFrontPageSource(fetcher PageFetcher, baseURL string) *FrontPageSource {
	return &FrontPageSource{fetcher: fetcher, baseURL: baseURL}
}

// Candidates fetches and parses the front page. A fetch failure is the one
// error that fails a whole run, so it is returned rather than swallowed.
func (s *FrontPageSource) Candidates(ctx context.Context) ([]core.Candidate, error) {
	html, err := s.fetcher.Page(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch front page: %w", err)
	}
	return ExtractListings(html, s.baseURL), nil
}

// FeedSource produces candidates from an RSS feed such as hnrss.org, which
// carries the discussion URL as each item's GUID. Feed fetches honor the
// same User-Agent and timeout as every other page fetch.
type FeedSource struct {
	parser  *gofeed.Parser
	feedURL string
}

// FeedOption configures a FeedSource.
type FeedOption func(*FeedSource)

// WithFeedUserAgent overrides the User-Agent sent on feed requests.
func WithFeedUserAgent(ua string) FeedOption {
	return func(s *FeedSource) {
		s.parser.UserAgent = ua
	}
}

// WithFeedTimeout sets the per-request timeout for feed fetches.
func WithFeedTimeout(d time.Duration) FeedOption {
	return func(s *FeedSource) {
		s.parser.Client = &http.Client{Timeout: d}
	}
}

// NewFeedSource creates an RSS candidate source with a 10 second default
// timeout.
func NewFeedSource(feedURL string, opts ...FeedOption) *FeedSource {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: 10 * time.Second}
	s := &FeedSource{parser: parser, feedURL: feedURL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Candidates fetches and parses the feed. Items without a usable link are
// dropped with a log line; indices stay contiguous.
func (s *FeedSource) Candidates(ctx context.Context) ([]core.Candidate, error) {
	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", s.feedURL, err)
	}

	var candidates []core.Candidate
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Title) == "" {
			continue
		}
		articleURL, err := url.Parse(item.Link)
		if err != nil || articleURL.Scheme == "" || articleURL.Host == "" {
			logger.Get().Debug().Str("link", item.Link).Msg("dropping feed item with malformed link")
			continue
		}
		commentsURL := item.Link
		if guid, err := url.Parse(item.GUID); err == nil && guid.Scheme != "" && guid.Host != "" {
			commentsURL = guid.String()
		}
		candidates = append(candidates, core.Candidate{
			Index:       len(candidates) + 1,
			Title:       strings.TrimSpace(item.Title),
			ArticleURL:  articleURL.String(),
			CommentsURL: commentsURL,
		})
	}
	return candidates, nil
}
