// Package extract turns raw HTML into normalized plain text: the body of an
// article page, or a flattened Hacker News comment thread. Input may be
// arbitrarily malformed; every function degrades to "" instead of failing.
package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	// MaxArticleLen bounds extracted article text. The summarization prompt
	// downstream assumes article text never exceeds this.
	MaxArticleLen = 5000
	// MaxCommentsLen bounds flattened comment text, same contract.
	MaxCommentsLen = 3000
	// TruncationMarker is appended whenever a cap bites.
	TruncationMarker = "\n...[truncated]"
)

// Kind selects the extraction mode.
type Kind int

const (
	KindArticle Kind = iota
	KindComments
)

// chromeSelector matches script/style and page chrome stripped before text
// extraction.
const chromeSelector = "script, style, nav, header, footer, aside, form, iframe, noscript"

// mainContentSelectors are tried in order before falling back to body text.
var mainContentSelectors = []string{
	"article",
	"main",
	"[role='main']",
	".post-content", ".entry-content", ".article-body", ".post-body",
	".content", "#content",
}

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n\s*\n+`)
)

// Text extracts plain text from html according to kind.
func Text(html string, kind Kind, pageURL string) string {
	if kind == KindComments {
		return CommentsText(html)
	}
	return ArticleText(html, pageURL)
}

// ArticleText extracts the readable body text of an article page. It tries
// readability extraction first, then a selector-based fallback over common
// content containers, then the whole body. Output is whitespace-normalized,
// paragraph boundaries become single newlines, and the result is capped at
// MaxArticleLen.
func ArticleText(html string, pageURL string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = &url.URL{}
	}
	if article, err := readability.FromReader(strings.NewReader(html), parsed); err == nil {
		if text := normalize(article.TextContent); text != "" {
			return truncate(text, MaxArticleLen)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find(chromeSelector).Remove()

	var sel *goquery.Selection
	for _, selector := range mainContentSelectors {
		if s := doc.Find(selector); s.Length() > 0 {
			sel = s.First()
			break
		}
	}
	if sel == nil {
		sel = doc.Find("body")
	}

	var b strings.Builder
	sel.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre").Each(func(_ int, item *goquery.Selection) {
		if text := strings.TrimSpace(item.Text()); text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		}
	})
	text := b.String()
	if text == "" {
		text = sel.Text()
	}

	return truncate(normalize(text), MaxArticleLen)
}

// CommentsText flattens a Hacker News discussion page into one line per
// comment, "{user} ({age}): {body}", in document order. Document order on HN
// already places each parent before its replies; indentation depth is
// discarded. The result is capped at MaxCommentsLen.
func CommentsText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var lines []string
	doc.Find("tr.comtr").Each(func(_ int, row *goquery.Selection) {
		body := collapseSpaces(row.Find("div.comment span.commtext").First().Text())
		if body == "" {
			return // flagged or deleted comment
		}
		user := strings.TrimSpace(row.Find("a.hnuser").First().Text())
		age := collapseSpaces(row.Find("span.age").First().Text())
		lines = append(lines, fmt.Sprintf("%s (%s): %s", user, age, body))
	})

	return truncate(strings.Join(lines, "\n"), MaxCommentsLen)
}

// normalize collapses horizontal whitespace runs to single spaces and blank
// line runs to single newlines, trimming each line.
func normalize(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = newlineRuns.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// truncate caps text at max runes, appending TruncationMarker when it cuts.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + TruncationMarker
}
