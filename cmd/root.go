package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Liancohen0104/Rentmate/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rentmate",
	Short: "Rental listing aggregator with model-assisted matching",
	Long:  "Scrapes rental listings into a local store, serves a REST API, and ranks apartments against user preferences with a language model.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
