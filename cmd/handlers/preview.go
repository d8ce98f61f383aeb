package handlers

import (
	"github.com/spf13/cobra"

	"hnletter/internal/pipeline"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Run the pipeline but write the newsletter to disk instead of sending",
	Long: `Preview runs the full pipeline through rendering, then writes the issue to
the configured output directory. Delivery credentials are not required.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeRun(cmd, pipeline.WithPreview())
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
