package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/pipeline"
)

var (
	analyzeName    string
	analyzeTypes   string
	analyzeManual  string
	analyzeInsight string
	analyzeProblem string
	analyzeFormat  string
	analyzeEnrich  bool
	analyzeReport  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url>",
	Short: "Analyse a review export without touching the store",
	Long:  "Reads reviews from a CSV, XLSX or JSON export and prints the classification, keyword aggregation, report and root cause analysis.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reviews, err := loadReviews(ctx, args[0])
		if err != nil {
			return err
		}

		var rec *model.InsightRecord
		if analyzeInsight != "" {
			// A supplied insight replaces the enrichment call.
			insight, err := loadInsight(analyzeInsight)
			if err != nil {
				return err
			}
			rec = pipeline.New(cfg, nil, nil).Build(analyzeBusiness(), reviews, insight, analyzeProblem)
		} else {
			enricher, err := initEnricher(analyzeEnrich)
			if err != nil {
				return err
			}
			rec = pipeline.New(cfg, nil, enricher).Analyze(ctx, analyzeBusiness(), reviews, analyzeProblem)
		}

		zap.L().Info("analysis complete",
			zap.Int("reviews", len(reviews)),
			zap.String("business_type", string(rec.Classification.Type)),
			zap.Bool("enriched", rec.Enriched),
		)
		if analyzeReport {
			return writeOutput(os.Stdout, rec.Report, analyzeFormat)
		}
		return writeOutput(os.Stdout, rec, analyzeFormat)
	},
}

func analyzeBusiness() model.Business {
	return model.Business{
		Name:       analyzeName,
		Types:      splitList(analyzeTypes),
		ManualType: analyzeManual,
	}
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "business name (used for classification)")
	analyzeCmd.Flags().StringVar(&analyzeTypes, "types", "", "comma-separated place taxonomy tags")
	analyzeCmd.Flags().StringVar(&analyzeManual, "type", "", "manual business type override")
	analyzeCmd.Flags().StringVar(&analyzeInsight, "insight", "", "JSON file with a precomputed insight (skips enrichment)")
	analyzeCmd.Flags().StringVar(&analyzeProblem, "problem", "", "problem to run root cause analysis on (default: top issue)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "output format: json or yaml")
	analyzeCmd.Flags().BoolVar(&analyzeEnrich, "enrich", false, "call the LLM enrichment even if enrich.enabled is false")
	analyzeCmd.Flags().BoolVar(&analyzeReport, "report-only", false, "print only the analysis report")
	rootCmd.AddCommand(analyzeCmd)
}
