package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Liancohen0104/Rentmate/internal/scheduler"
	"github.com/Liancohen0104/Rentmate/internal/scraper"
)

var scrapeLoop bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch listings from configured sources into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sources, err := scraper.LoadSources(cfg.Scrape.SourcesFile)
		if err != nil {
			return err
		}

		sc := scraper.New(env.Store, sources, cfg.Scrape)

		if scrapeLoop {
			interval := time.Duration(cfg.Scrape.IntervalHours) * time.Hour
			scheduler.New(interval, sc.Run).Start(ctx)
			return nil
		}

		stored, err := sc.Run(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("scrape complete", zap.Int("stored", stored))
		return nil
	},
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeLoop, "loop", false, "keep scraping on the configured interval")
	rootCmd.AddCommand(scrapeCmd)
}
