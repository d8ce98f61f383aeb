// Package render merges summary records and run metadata into the final HTML
// newsletter.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"hnletter/internal/core"
	"hnletter/internal/logger"
)

// Renderer renders newsletters from a named HTML template file. The template
// being unreadable is the one fatal error of the render stage.
type Renderer struct {
	templatePath string
}

// New creates a renderer bound to a template file.
func New(templatePath string) *Renderer {
	return &Renderer{templatePath: templatePath}
}

// articleView is one article card as the template sees it. Summaries arrive
// as markdown and are converted to HTML here.
type articleView struct {
	Index       int
	Title       string
	ArticleURL  string
	CommentsURL string
	SummaryHTML template.HTML
	Placeholder bool
}

type newsletterView struct {
	Title         string
	Date          string
	Keywords      []string
	TotalArticles int
	SelectedCount int
	Articles      []articleView
}

// Render produces the newsletter HTML for a payload. A malformed record does
// not abort the batch: it renders as a placeholder card and the remaining
// records render normally. The error return is reserved for the template
// resource being missing or invalid.
func (r *Renderer) Render(payload core.NewsletterPayload) (string, error) {
	tmpl, err := template.ParseFiles(r.templatePath)
	if err != nil {
		return "", fmt.Errorf("load newsletter template %s: %w", r.templatePath, err)
	}

	view := newsletterView{
		Title:         payload.Title,
		Date:          payload.Date,
		Keywords:      payload.Keywords,
		TotalArticles: payload.TotalArticles,
		SelectedCount: payload.SelectedCount,
	}
	for _, rec := range payload.Articles {
		if rec.Title == "" || rec.ArticleURL == "" || strings.TrimSpace(rec.Summary) == "" {
			logger.Get().Warn().Int("index", rec.Index).Msg("malformed summary record, rendering placeholder")
			view.Articles = append(view.Articles, articleView{
				Index:       rec.Index,
				Title:       "Article unavailable",
				Placeholder: true,
			})
			continue
		}
		view.Articles = append(view.Articles, articleView{
			Index:       rec.Index,
			Title:       rec.Title,
			ArticleURL:  rec.ArticleURL,
			CommentsURL: rec.CommentsURL,
			SummaryHTML: renderMarkdown(rec.Summary),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("execute newsletter template: %w", err)
	}
	return buf.String(), nil
}

// renderMarkdown converts a markdown summary to HTML for safe embedding.
func renderMarkdown(text string) template.HTML {
	extensions := parser.CommonExtensions | parser.HardLineBreak
	mdParser := parser.NewWithExtensions(extensions)

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
	})

	return template.HTML(markdown.ToHTML([]byte(text), mdParser, renderer))
}

// Title builds the newsletter display title from the keyword list.
func Title(keywords []string) string {
	if len(keywords) == 0 {
		return "Your Tech Newsletter"
	}
	return fmt.Sprintf("Your %s Newsletter", strings.Join(keywords, " & "))
}

// Subject builds the email subject line.
func Subject(keywords []string, now time.Time) string {
	return fmt.Sprintf("Your %s Newsletter - %s", strings.Join(keywords, ", "), now.Format("January 2, 2006"))
}

// WriteNewsletterToFile writes rendered newsletter HTML to a dated file under
// outputDir, creating the directory if needed. Used by preview runs.
func WriteNewsletterToFile(content string, outputDir string, now time.Time) (string, error) {
	if outputDir == "" {
		outputDir = "newsletters"
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, fmt.Sprintf("newsletter_%s.html", now.Format("2006-01-02")))
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write newsletter file %s: %w", filePath, err)
	}
	return filePath, nil
}
