package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	batchLimit  int
	batchEnrich bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [business-id...]",
	Short: "Analyse many stored businesses concurrently",
	Long:  "Analyses the given businesses, or every stored business when none are given, with batch.max_concurrent_businesses runs in flight.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, batchEnrich)
		if err != nil {
			return err
		}
		defer env.Close()

		ids := args
		if len(ids) == 0 {
			ids, err = env.Pipeline.ListBusinessIDs(ctx, batchLimit)
			if err != nil {
				return err
			}
		} else if batchLimit > 0 && len(ids) > batchLimit {
			ids = ids[:batchLimit]
		}

		res, err := env.Pipeline.RunBatch(ctx, ids, cfg.Batch.MaxConcurrentBusinesses)
		if err != nil {
			return err
		}
		for id, runErr := range res.Errors {
			zap.L().Error("analysis failed", zap.String("business_id", id), zap.Error(runErr))
		}
		if res.Failed > 0 && res.Succeeded == 0 {
			return eris.Errorf("batch: all %d analyses failed", res.Failed)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of businesses to process (0 = all)")
	batchCmd.Flags().BoolVar(&batchEnrich, "enrich", false, "call the LLM enrichment even if enrich.enabled is false")
	rootCmd.AddCommand(batchCmd)
}
