package core

import "time"

// Candidate represents one front-page entry discovered during listing
// extraction. Indices are 1-based and stable for the life of a run; the
// selection step refers back into the candidate list by these numbers.
type Candidate struct {
	Index       int    `json:"index"`        // 1-based position in document order
	Title       string `json:"title"`        // Listing title text
	ArticleURL  string `json:"article_url"`  // Absolute URL of the linked article
	CommentsURL string `json:"comments_url"` // Absolute URL of the discussion page
}

// ScrapedContent holds the extracted text for one candidate. Either side may
// be empty when its fetch or extraction failed; the two sides fail
// independently.
type ScrapedContent struct {
	ArticleText  string `json:"article_text"`
	CommentsText string `json:"comments_text"`
}

// Empty reports whether both sides of the scrape came back empty.
func (s ScrapedContent) Empty() bool {
	return s.ArticleText == "" && s.CommentsText == ""
}

// SummaryRecord is one summarized article ready for the newsletter. Records
// are created only for candidates that scraped and summarized successfully,
// in selection order.
type SummaryRecord struct {
	Index       int    `json:"index"`        // Candidate index this record came from
	Title       string `json:"title"`        // Article title
	ArticleURL  string `json:"article_url"`  // Link to the article
	CommentsURL string `json:"comments_url"` // Link to the discussion
	Summary     string `json:"summary"`      // Model-generated summary (markdown)
}

// NewsletterPayload aggregates everything the renderer needs for one issue.
// It is write-once: the pipeline assembles it and hands it to the renderer.
type NewsletterPayload struct {
	Title         string          `json:"title"`          // Newsletter display title
	Date          string          `json:"date"`           // Human-readable issue date
	Keywords      []string        `json:"keywords"`       // Keywords the selection ran against
	TotalArticles int             `json:"total_articles"` // Candidates found on the front page
	SelectedCount int             `json:"selected_count"` // Articles that made it into the issue
	Articles      []SummaryRecord `json:"articles"`       // Issue content, selection order
}

// RunReport captures the outcome of a single pipeline run for the operator
// log. Nothing in it persists beyond the run.
type RunReport struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	CandidatesFound int       `json:"candidates_found"`
	Selected        int       `json:"selected"`
	Scraped         int       `json:"scraped"`
	Summarized      int       `json:"summarized"`
	Sent            bool      `json:"sent"`
	Status          string    `json:"status"` // Final human-readable run status
}
