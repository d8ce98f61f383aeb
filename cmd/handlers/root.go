/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hnletter/internal/config"
	"hnletter/internal/email"
	"hnletter/internal/fetch"
	"hnletter/internal/listing"
	"hnletter/internal/llm"
	"hnletter/internal/logger"
	"hnletter/internal/pipeline"
	"hnletter/internal/render"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hnletter",
	Short: "hnletter scrapes Hacker News, summarizes keyword matches with Gemini, and emails the newsletter.",
	Long: `hnletter runs an unattended newsletter pipeline: it scrapes the Hacker
News front page, asks Gemini which articles match your keywords, scrapes and
summarizes each selected article together with its discussion thread, renders
an HTML newsletter, and sends it through Microsoft Graph.

Use "hnletter run" for one complete run (the normal container entrypoint),
"hnletter preview" to write the rendered issue to disk without sending, or
"hnletter schedule" to stay resident and run on a cron expression.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .hnletter.yaml)")
}

// loadConfig loads configuration and initializes logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)
	return cfg, nil
}

// buildPipeline wires the pipeline's collaborators from configuration. The
// returned cleanup closes the model client.
func buildPipeline(ctx context.Context, cfg *config.Config, opts ...pipeline.Option) (*pipeline.Pipeline, func(), error) {
	fetcher := fetch.NewClient(
		fetch.WithTimeout(cfg.FetchTimeout()),
		fetch.WithUserAgent(cfg.Listing.UserAgent),
	)

	var source pipeline.CandidateSource
	switch cfg.Listing.Source {
	case "rss":
		source = listing.NewFeedSource(cfg.Listing.FeedURL,
			listing.WithFeedUserAgent(cfg.Listing.UserAgent),
			listing.WithFeedTimeout(cfg.FetchTimeout()),
		)
	default:
		source = listing.NewFrontPageSource(fetcher, cfg.Listing.BaseURL)
	}

	model, err := llm.NewClient(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model, cfg.ModelTimeout())
	if err != nil {
		return nil, nil, fmt.Errorf("create model client: %w", err)
	}

	deps := pipeline.Deps{
		Source:   source,
		Details:  fetcher,
		Model:    model,
		Renderer: render.New(cfg.Newsletter.TemplatePath),
		Mailer: email.NewSender(
			cfg.Graph.ClientID,
			cfg.Graph.TenantID,
			cfg.Graph.ClientSecret,
			cfg.Graph.SenderEmail,
		),
	}

	cleanup := func() {
		if err := model.Close(); err != nil {
			logger.Error("closing model client", err)
		}
	}
	return pipeline.New(cfg, deps, opts...), cleanup, nil
}
