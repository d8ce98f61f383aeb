package listing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const frontPage = `<html><body><table>
	<tr class="athing" id="1001"><td>
		<span class="titleline"><a href="https://example.com/story-one">Story One</a></span>
	</td></tr>
	<tr class="athing" id="1002"><td>
		<span class="titleline"><a href="item?id=1002">Ask HN: Story Two</a></span>
	</td></tr>
	<tr class="athing" id="1003"><td>
		<span class="titleline"><a href="https://example.org/deep/story-three">Story Three</a></span>
	</td></tr>
</table></body></html>`

func TestExtractListings(t *testing.T) {
	candidates := ExtractListings(frontPage, "https://news.ycombinator.com/")

	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}

	for i, c := range candidates {
		if c.Index != i+1 {
			t.Errorf("candidate %d has index %d, want contiguous 1-based", i, c.Index)
		}
		if !strings.HasPrefix(c.ArticleURL, "http") {
			t.Errorf("candidate %d article URL not absolute: %q", i, c.ArticleURL)
		}
		if !strings.HasPrefix(c.CommentsURL, "https://news.ycombinator.com/item?id=") {
			t.Errorf("candidate %d comments URL unexpected: %q", i, c.CommentsURL)
		}
	}

	if candidates[0].Title != "Story One" || candidates[0].ArticleURL != "https://example.com/story-one" {
		t.Errorf("unexpected first candidate: %+v", candidates[0])
	}
	// Relative hrefs resolve against the base URL.
	if candidates[1].ArticleURL != "https://news.ycombinator.com/item?id=1002" {
		t.Errorf("relative URL not resolved: %q", candidates[1].ArticleURL)
	}
	if candidates[2].CommentsURL != "https://news.ycombinator.com/item?id=1003" {
		t.Errorf("comments URL not derived from row id: %q", candidates[2].CommentsURL)
	}
}

func TestExtractListingsDropsBadRows(t *testing.T) {
	html := `<html><body><table>
		<tr class="athing" id="1"><td><span class="titleline"><a href="https://example.com/ok">Good</a></span></td></tr>
		<tr class="athing"><td><span class="titleline"><a href="https://example.com/no-id">Missing ID</a></span></td></tr>
		<tr class="athing" id="3"><td><span class="titleline"><a href="http://exa mple.com/bad">Bad URL</a></span></td></tr>
		<tr class="athing" id="4"><td><span class="titleline"><a href="https://example.com/also-ok">Also Good</a></span></td></tr>
	</table></body></html>`

	candidates := ExtractListings(html, "https://news.ycombinator.com/")

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates after dropping bad rows, got %d: %+v", len(candidates), candidates)
	}
	if candidates[0].Title != "Good" || candidates[1].Title != "Also Good" {
		t.Errorf("unexpected surviving candidates: %+v", candidates)
	}
	// Indices stay contiguous after drops.
	if candidates[0].Index != 1 || candidates[1].Index != 2 {
		t.Errorf("indices not contiguous: %d, %d", candidates[0].Index, candidates[1].Index)
	}
}

func TestExtractListingsTotalParseFailure(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		baseURL string
	}{
		{name: "empty document", html: "", baseURL: "https://news.ycombinator.com/"},
		{name: "no story rows", html: "<html><body><p>maintenance</p></body></html>", baseURL: "https://news.ycombinator.com/"},
		{name: "invalid base URL", html: frontPage, baseURL: "://not-a-url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractListings(tt.html, tt.baseURL); len(got) != 0 {
				t.Errorf("expected no candidates, got %+v", got)
			}
		})
	}
}

type stubFetcher struct {
	html string
	err  error
}

func (s *stubFetcher) Page(ctx context.Context, pageURL string) (string, error) {
	return s.html, s.err
}

func TestFrontPageSource(t *testing.T) {
	source := NewFrontPageSource(&stubFetcher{html: frontPage}, "https://news.ycombinator.com/")

	candidates, err := source.Candidates(context.Background())
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(candidates) != 3 {
		t.Errorf("expected 3 candidates, got %d", len(candidates))
	}
}

func TestFrontPageSourceFetchFailure(t *testing.T) {
	source := NewFrontPageSource(&stubFetcher{err: fmt.Errorf("connection refused")}, "https://news.ycombinator.com/")

	if _, err := source.Candidates(context.Background()); err == nil {
		t.Fatal("expected error when the front page fetch fails")
	}
}

func TestFeedSource(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Front Page</title>
	<item>
		<title>Feed Story One</title>
		<link>https://example.com/one</link>
		<guid isPermaLink="false">https://news.ycombinator.com/item?id=1</guid>
	</item>
	<item>
		<title>Feed Story Two</title>
		<link>not a url</link>
		<guid>x</guid>
	</item>
	<item>
		<title>Feed Story Three</title>
		<link>https://example.com/three</link>
		<guid isPermaLink="false">https://news.ycombinator.com/item?id=3</guid>
	</item>
</channel>
</rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feed)
	}))
	defer server.Close()

	source := NewFeedSource(server.URL)
	candidates, err := source.Candidates(context.Background())
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates (malformed link dropped), got %d: %+v", len(candidates), candidates)
	}
	if candidates[0].Title != "Feed Story One" || candidates[0].CommentsURL != "https://news.ycombinator.com/item?id=1" {
		t.Errorf("unexpected first candidate: %+v", candidates[0])
	}
	if candidates[1].Index != 2 {
		t.Errorf("indices not contiguous after drop: %+v", candidates[1])
	}
}

func TestFeedSourceSendsConfiguredUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Front Page</title></channel></rss>`)
	}))
	defer server.Close()

	source := NewFeedSource(server.URL,
		WithFeedUserAgent("test-agent/1.0"),
		WithFeedTimeout(5*time.Second),
	)
	if _, err := source.Candidates(context.Background()); err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if gotUA != "test-agent/1.0" {
		t.Errorf("feed request User-Agent = %q, want %q", gotUA, "test-agent/1.0")
	}
}
