package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/review-insights/internal/keyword"
	"github.com/sells-group/review-insights/internal/model"
)

var (
	keywordsMode   string
	keywordsTop    int
	keywordsFormat string
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords <file|url>",
	Short: "Aggregate review keywords by frequency, sentiment or theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := model.KeywordMode(keywordsMode)
		switch mode {
		case model.KeywordModeFrequency, model.KeywordModeSentiment, model.KeywordModeTheme:
		default:
			return eris.Errorf("keywords: unknown mode %q (frequency, sentiment, theme)", keywordsMode)
		}

		reviews, err := loadReviews(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		agg := keyword.Aggregate(reviews, mode)
		if keywordsTop > 0 && len(agg.ByFrequency) > keywordsTop {
			agg.ByFrequency = agg.ByFrequency[:keywordsTop]
		}
		return writeOutput(os.Stdout, agg, keywordsFormat)
	},
}

func init() {
	keywordsCmd.Flags().StringVar(&keywordsMode, "mode", string(model.KeywordModeFrequency), "aggregation mode: frequency, sentiment or theme")
	keywordsCmd.Flags().IntVar(&keywordsTop, "top", 0, "keep only the n most frequent words (frequency list)")
	keywordsCmd.Flags().StringVar(&keywordsFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(keywordsCmd)
}
