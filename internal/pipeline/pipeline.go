// Package pipeline drives one newsletter run end to end: listing, selection,
// the per-candidate scrape and summarize loop, rendering, and delivery.
// Failures are contained at the smallest possible scope; only an unreachable
// front page and missing delivery settings abort a run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"hnletter/internal/config"
	"hnletter/internal/core"
	"hnletter/internal/llm"
	"hnletter/internal/logger"
	"hnletter/internal/render"
	"hnletter/internal/selection"
	"hnletter/internal/summarize"
)

// CandidateSource produces the run's ordered candidate list.
type CandidateSource interface {
	Candidates(ctx context.Context) ([]core.Candidate, error)
}

// DetailFetcher fetches and extracts both pages of one candidate.
type DetailFetcher interface {
	Details(ctx context.Context, articleURL, commentsURL string) core.ScrapedContent
}

// Completer sends one prompt to the model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Renderer renders the newsletter payload to HTML.
type Renderer interface {
	Render(payload core.NewsletterPayload) (string, error)
}

// Mailer delivers the rendered newsletter.
type Mailer interface {
	Send(ctx context.Context, subject, htmlBody string, recipients []string) error
}

// Deps bundles the pipeline's collaborators.
type Deps struct {
	Source   CandidateSource
	Details  DetailFetcher
	Model    Completer
	Renderer Renderer
	Mailer   Mailer
}

// Pipeline executes runs strictly sequentially: at most one model request in
// flight, blocking on each external call in turn.
type Pipeline struct {
	cfg   *config.Config
	deps  Deps
	sleep func(time.Duration)
	now   func() time.Time

	preview bool // stop after rendering and write the issue to disk
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPreview makes Run write the rendered newsletter to the configured
// output directory instead of sending it.
func WithPreview() Option {
	return func(p *Pipeline) { p.preview = true }
}

// WithSleep overrides the pacing sleep (for testing).
func WithSleep(fn func(time.Duration)) Option {
	return func(p *Pipeline) { p.sleep = fn }
}

// WithClock overrides the time source (for testing).
func WithClock(fn func() time.Time) Option {
	return func(p *Pipeline) { p.now = fn }
}

// New creates a pipeline.
func New(cfg *config.Config, deps Deps, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:   cfg,
		deps:  deps,
		sleep: time.Sleep,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one complete run and always returns a report. The error
// return is non-nil only for the genuinely fatal cases: delivery settings
// missing at startup, or the front page unreachable. Everything else resolves
// to a logged skip or a terminal-but-clean status so the next scheduled run
// is unaffected.
func (p *Pipeline) Run(ctx context.Context) (*core.RunReport, error) {
	report := &core.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: p.now(),
	}
	log := logger.Get().With().Str("run_id", report.RunID).Logger()

	if !p.preview {
		if err := p.cfg.ValidateDelivery(); err != nil {
			report.Status = "configuration incomplete"
			return report, err
		}
	}

	// LISTING
	candidates, err := p.deps.Source.Candidates(ctx)
	if err != nil {
		report.Status = "front page unreachable"
		return report, err
	}
	report.CandidatesFound = len(candidates)
	log.Info().Int("candidates", len(candidates)).Msg("front page scraped")
	if len(candidates) == 0 {
		report.Status = "no candidates found"
		return report, nil
	}

	// SELECTING
	keywords := p.cfg.Newsletter.Keywords
	prompt := selection.BuildSelectionPrompt(candidates, keywords, p.promptContext())
	reply, err := p.deps.Model.Complete(ctx, prompt)
	if err != nil {
		// An empty reply is the model answering "nothing relevant", which
		// the selection prompt invites; only a real request failure ends
		// the run here.
		if !errors.Is(err, llm.ErrEmptyResponse) {
			log.Error().Err(err).Msg("selection request failed")
			report.Status = "selection failed"
			return report, nil
		}
		reply = ""
	}
	selected := selection.ParseSelection(reply, len(candidates))
	report.Selected = len(selected)
	log.Info().Int("selected", len(selected)).Msg("selection parsed")
	if len(selected) == 0 {
		report.Status = "no articles selected"
		return report, nil
	}

	if limit := p.cfg.Newsletter.ArticleCap; len(selected) > limit {
		log.Info().Int("cap", limit).Int("selected", len(selected)).Msg("capping selection")
		selected = selected[:limit]
	}

	// SCRAPING and SUMMARIZING, one candidate at a time
	var records []core.SummaryRecord
	for i, idx := range selected {
		if i > 0 {
			p.sleep(p.cfg.ItemDelay())
		}
		cand := candidates[idx-1]
		itemLog := log.With().Int("index", idx).Str("title", cand.Title).Logger()

		content := p.deps.Details.Details(ctx, cand.ArticleURL, cand.CommentsURL)
		if content.Empty() {
			itemLog.Warn().Msg("skipping candidate: nothing scraped")
			continue
		}
		report.Scraped++

		summaryPrompt := summarize.BuildSummaryPrompt(cand.Title, content.ArticleText, content.CommentsText, keywords)
		summary, err := p.deps.Model.Complete(ctx, summaryPrompt)
		if err != nil {
			itemLog.Warn().Err(err).Msg("skipping candidate: summarization failed")
			continue
		}
		report.Summarized++
		itemLog.Info().Msg("candidate summarized")

		records = append(records, core.SummaryRecord{
			Index:       cand.Index,
			Title:       cand.Title,
			ArticleURL:  cand.ArticleURL,
			CommentsURL: cand.CommentsURL,
			Summary:     summary,
		})
	}

	if len(records) == 0 {
		report.Status = "nothing summarized, send skipped"
		log.Warn().Msg(report.Status)
		return report, nil
	}

	// RENDERING
	now := p.now()
	payload := core.NewsletterPayload{
		Title:         render.Title(keywords),
		Date:          now.Format("January 2, 2006"),
		Keywords:      keywords,
		TotalArticles: len(candidates),
		SelectedCount: len(records),
		Articles:      records,
	}
	html, err := p.deps.Renderer.Render(payload)
	if err != nil {
		log.Error().Err(err).Msg("render failed, delivery aborted")
		report.Status = "render failed"
		return report, nil
	}

	if p.preview {
		path, err := render.WriteNewsletterToFile(html, p.cfg.Newsletter.OutputDir, now)
		if err != nil {
			log.Error().Err(err).Msg("preview write failed")
			report.Status = "preview write failed"
			return report, nil
		}
		report.Status = fmt.Sprintf("preview written to %s", path)
		log.Info().Str("path", path).Msg("preview written")
		return report, nil
	}

	// SENDING
	subject := render.Subject(keywords, now)
	if err := p.deps.Mailer.Send(ctx, subject, html, p.cfg.Graph.Recipients); err != nil {
		log.Error().Err(err).Msg("delivery failed")
		report.Status = "delivery failed"
		return report, nil
	}
	report.Sent = true
	report.Status = "newsletter sent"
	return report, nil
}

// promptContext loads the configured selection-prompt context file. An unset
// path or a read failure falls back to the built-in default.
func (p *Pipeline) promptContext() string {
	path := p.cfg.Newsletter.PromptContextPath
	if path == "" {
		return ""
	}
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Get().Warn().Str("path", path).Err(err).Msg("prompt context unavailable, using default")
		return ""
	}
	return string(content)
}
