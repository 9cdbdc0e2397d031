package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/review-insights/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "review-insights",
	Short: "Customer review analytics pipeline",
	Long:  "Imports customer reviews, classifies businesses, aggregates keywords, builds report-ready analyses with root cause breakdowns, and optionally enriches them with an LLM summary.",
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
