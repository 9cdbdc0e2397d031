package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/pipeline"
)

var (
	rootcauseProblem string
	rootcauseInsight string
	rootcauseFormat  string
)

var rootcauseCmd = &cobra.Command{
	Use:   "rootcause <file|url>",
	Short: "Break a problem down into Ishikawa root causes backed by review evidence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reviews, err := loadReviews(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		insight, err := loadInsight(rootcauseInsight)
		if err != nil {
			return err
		}

		rec := pipeline.New(cfg, nil, nil).Build(model.Business{}, reviews, insight, rootcauseProblem)
		if rec.RootCause == nil {
			return eris.New("rootcause: no problem given and no negative reviews to derive one from")
		}
		return writeOutput(os.Stdout, rec.RootCause, rootcauseFormat)
	},
}

func init() {
	rootcauseCmd.Flags().StringVar(&rootcauseProblem, "problem", "", "problem statement (default: top issue)")
	rootcauseCmd.Flags().StringVar(&rootcauseInsight, "insight", "", "JSON file with a precomputed insight")
	rootcauseCmd.Flags().StringVar(&rootcauseFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(rootcauseCmd)
}
