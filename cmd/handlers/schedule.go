package handlers

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hnletter/internal/logger"
	"hnletter/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Stay resident and run the pipeline on a cron schedule",
	Long: `Schedule keeps the process alive and triggers a full run on the configured
cron expression (schedule.cron, default daily at 07:00). Each run is
independent; a failed run never prevents the next one. Overlapping triggers
are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		job := func() {
			p, cleanup, err := buildPipeline(context.Background(), cfg)
			if err != nil {
				logger.Error("scheduled run setup failed", err)
				return
			}
			defer cleanup()

			report, err := p.Run(context.Background())
			if err != nil {
				logger.Error("scheduled run failed", err)
			}
			logReport(report)
		}

		sched, err := scheduler.New(cfg.Schedule.Cron, job)
		if err != nil {
			return err
		}

		sched.Start()
		logger.Get().Info().Str("cron", cfg.Schedule.Cron).Msg("scheduler started")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		logger.Info("shutting down scheduler")
		sched.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
