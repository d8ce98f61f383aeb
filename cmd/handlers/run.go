package handlers

import (
	"github.com/spf13/cobra"

	"hnletter/internal/core"
	"hnletter/internal/logger"
	"hnletter/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one complete newsletter run",
	Long: `Run scrapes the front page, selects and summarizes matching articles, and
sends the rendered newsletter. Per-item failures are logged and skipped; the
process exits non-zero only when the front page is unreachable or required
configuration is missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func executeRun(cmd *cobra.Command, opts ...pipeline.Option) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, cleanup, err := buildPipeline(cmd.Context(), cfg, opts...)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := p.Run(cmd.Context())
	logReport(report)
	return err
}

// logReport emits the end-of-run summary the operator reads.
func logReport(report *core.RunReport) {
	if report == nil {
		return
	}
	logger.Get().Info().
		Str("run_id", report.RunID).
		Int("candidates_found", report.CandidatesFound).
		Int("selected", report.Selected).
		Int("scraped", report.Scraped).
		Int("summarized", report.Summarized).
		Bool("sent", report.Sent).
		Str("status", report.Status).
		Msg("run complete")
}
