// Package summarize builds the per-article summarization prompt.
package summarize

import (
	"fmt"
	"strings"
)

// BuildSummaryPrompt assembles the summarization prompt for one article from
// its title, extracted article text, flattened comment text, and the run's
// keywords. Pure string assembly, no network and no re-truncation: it assumes
// articleText and commentsText are already capped by the extractor (5000 and
// 3000 runes respectively), which keeps the prompt inside the model's
// context window.
func BuildSummaryPrompt(title, articleText, commentsText string, keywords []string) string {
	keywordsText := strings.Join(keywords, ", ")

	var b strings.Builder
	b.WriteString("Please provide a concise summary of this article and highlight key discussion points from the comments.\n\n")
	b.WriteString(fmt.Sprintf("ARTICLE TITLE: %s\n\n", title))
	b.WriteString("ARTICLE CONTENT:\n")
	b.WriteString(articleText)
	b.WriteString("\n\nHACKER NEWS COMMENTS:\n")
	b.WriteString(commentsText)
	b.WriteString("\n\nPlease provide:\n")
	b.WriteString("1. A brief summary (2-3 sentences) of the article's main points\n")
	b.WriteString("2. Key insights or interesting perspectives from the comments\n")
	b.WriteString(fmt.Sprintf("3. Why this might be relevant to someone interested in %s", keywordsText))
	return b.String()
}
