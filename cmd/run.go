package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/review-insights/internal/model"
)

var (
	runFormat string
	runEnrich bool
)

var runCmd = &cobra.Command{
	Use:   "run <business-id>",
	Short: "Analyse one stored business and save its insight",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, runEnrich)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Pipeline.Run(ctx, args[0])
		if err != nil {
			return err
		}
		return writeOutput(os.Stdout, summarizeRecord(rec), runFormat)
	},
}

// recordSummary is the short form of an insight record printed after a run.
type recordSummary struct {
	BusinessID    string             `json:"business_id"`
	RunID         string             `json:"run_id"`
	BusinessType  model.BusinessType `json:"business_type"`
	Confidence    int                `json:"confidence"`
	TotalReviews  int                `json:"total_reviews"`
	AverageRating float64            `json:"average_rating"`
	Trend         model.Trend        `json:"trend"`
	Enriched      bool               `json:"enriched"`
	Summary       string             `json:"summary"`
	MainProblem   string             `json:"main_problem,omitempty"`
}

func summarizeRecord(rec *model.InsightRecord) recordSummary {
	s := recordSummary{
		BusinessID:    rec.BusinessID,
		RunID:         rec.RunID,
		BusinessType:  rec.Classification.Type,
		Confidence:    rec.Classification.Confidence,
		TotalReviews:  rec.Report.Overview.TotalReviews,
		AverageRating: rec.Report.Overview.AverageRating,
		Trend:         rec.Report.Overview.Trend,
		Enriched:      rec.Enriched,
		Summary:       rec.Report.Diagnostic.Summary,
	}
	if rec.RootCause != nil {
		s.MainProblem = rec.RootCause.Problem
	}
	return s
}

func init() {
	runCmd.Flags().StringVar(&runFormat, "format", "json", "output format: json or yaml")
	runCmd.Flags().BoolVar(&runEnrich, "enrich", false, "call the LLM enrichment even if enrich.enabled is false")
	rootCmd.AddCommand(runCmd)
}
