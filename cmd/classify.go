package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/pipeline"
)

var (
	classifyName    string
	classifyTypes   string
	classifyManual  string
	classifyReviews string
	classifyFormat  string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Detect a business type from its name, taxonomy tags and reviews",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if classifyName == "" && classifyTypes == "" && classifyManual == "" && classifyReviews == "" {
			return eris.New("classify: one of --name, --types, --type or --reviews is required")
		}

		var reviews []model.Review
		if classifyReviews != "" {
			var err error
			reviews, err = loadReviews(cmd.Context(), classifyReviews)
			if err != nil {
				return err
			}
		}

		c := pipeline.Classify(model.Business{
			Name:       classifyName,
			Types:      splitList(classifyTypes),
			ManualType: classifyManual,
		}, reviews)
		return writeOutput(os.Stdout, c, classifyFormat)
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyName, "name", "", "business name")
	classifyCmd.Flags().StringVar(&classifyTypes, "types", "", "comma-separated place taxonomy tags")
	classifyCmd.Flags().StringVar(&classifyManual, "type", "", "manual business type (wins over detection)")
	classifyCmd.Flags().StringVar(&classifyReviews, "reviews", "", "review export whose texts feed keyword detection")
	classifyCmd.Flags().StringVar(&classifyFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(classifyCmd)
}
