// Package selection builds the article-selection prompt and parses the
// model's free-form reply back into candidate indices.
package selection

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"hnletter/internal/core"
)

// DefaultPromptContext is the selection instruction used when no context file
// is configured. The reply format it asks for is a hint, not a contract:
// ParseSelection tolerates whatever comes back.
const DefaultPromptContext = `You are selecting articles for a personal tech newsletter.
From the numbered list of titles below, pick the articles that are clearly
relevant to the given keywords. Judge by title only. Be selective: an article
must plausibly be about one of the keywords, not merely adjacent to it.

Respond with the numbers of the selected articles separated by commas, for
example: 3, 7, 12. If nothing is relevant, respond with an empty line.`

// digitRuns matches maximal runs of digits; everything else in the model
// reply is ignored.
var digitRuns = regexp.MustCompile(`\d+`)

// ParseSelection extracts candidate indices from a free-form model reply. It
// keeps every digit run that parses to an integer in [1, candidateCount],
// drops everything else silently, and deduplicates preserving first-seen
// order. An empty result is the legitimate "nothing relevant" outcome, not an
// error. Quotes, prose, and mixed delimiters around the numbers are all
// tolerated; an out-of-range token is discarded rather than reported.
func ParseSelection(raw string, candidateCount int) []int {
	if candidateCount <= 0 {
		return nil
	}

	seen := make(map[int]bool)
	var indices []int
	for _, token := range digitRuns.FindAllString(raw, -1) {
		n, err := strconv.Atoi(token)
		if err != nil {
			continue // longer than an int; out of range by definition
		}
		if n < 1 || n > candidateCount || seen[n] {
			continue
		}
		seen[n] = true
		indices = append(indices, n)
	}
	return indices
}

// BuildSelectionPrompt assembles the selection prompt from the candidate
// titles and keywords. contextText overrides DefaultPromptContext when
// non-empty.
func BuildSelectionPrompt(candidates []core.Candidate, keywords []string, contextText string) string {
	if strings.TrimSpace(contextText) == "" {
		contextText = DefaultPromptContext
	}

	var b strings.Builder
	b.WriteString(contextText)
	b.WriteString("\n\nTITLES TO ANALYZE:\n")
	for _, c := range candidates {
		b.WriteString(fmt.Sprintf("%d. %s\n", c.Index, c.Title))
	}
	b.WriteString("\nKEYWORDS: ")
	b.WriteString(strings.Join(keywords, ", "))
	b.WriteString("\n")
	return b.String()
}
