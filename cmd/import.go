package main

import (
	"errors"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/store"
)

var (
	importName    string
	importTypes   string
	importReplace bool
)

var importCmd = &cobra.Command{
	Use:   "import <business-id> <file|url>",
	Short: "Import a review export into the store",
	Long:  "Creates or updates the business and stores its reviews. Reviews are appended (upserted by id) unless --replace is set.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		businessID, source := args[0], args[1]

		reviews, err := loadReviews(ctx, source)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		b, err := st.GetBusiness(ctx, businessID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			b = &model.Business{ID: businessID}
		case err != nil:
			return eris.Wrap(err, "import: load business")
		}
		if importName != "" {
			b.Name = importName
		}
		if importTypes != "" {
			b.Types = splitList(importTypes)
		}
		if b.Name == "" {
			b.Name = businessID
		}
		if err := st.UpsertBusiness(ctx, b); err != nil {
			return eris.Wrap(err, "import: upsert business")
		}

		var n int
		if importReplace {
			n, err = st.ReplaceReviews(ctx, businessID, reviews)
		} else {
			n, err = st.UpsertReviews(ctx, businessID, reviews)
		}
		if err != nil {
			return eris.Wrap(err, "import: store reviews")
		}

		zap.L().Info("import complete",
			zap.String("business_id", businessID),
			zap.String("source", source),
			zap.Int("reviews", n),
			zap.Bool("replace", importReplace),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "business name")
	importCmd.Flags().StringVar(&importTypes, "types", "", "comma-separated place taxonomy tags")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "replace all stored reviews instead of appending")
	rootCmd.AddCommand(importCmd)
}
