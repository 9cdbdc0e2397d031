package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/review-insights/internal/bizclass"
	"github.com/sells-group/review-insights/internal/model"
)

var businessCmd = &cobra.Command{
	Use:   "business",
	Short: "Inspect and annotate stored businesses",
}

var businessListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored businesses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		bs, err := st.ListBusinesses(ctx, limit, offset)
		if err != nil {
			return eris.Wrap(err, "business list")
		}
		if len(bs) == 0 {
			fmt.Fprintln(os.Stderr, "No businesses found.")
			return nil
		}
		formatBusinessList(os.Stdout, bs)
		return nil
	},
}

var businessSetTypeCmd = &cobra.Command{
	Use:   "set-type <business-id> <type>",
	Short: "Set a manual business type that overrides detection",
	Long:  "Known types: " + knownTypes() + ". Pass an empty string to clear the override.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var bt model.BusinessType
		if strings.TrimSpace(args[1]) != "" {
			bt = bizclass.NormalizeType(args[1])
			if bt == model.BusinessAutre && !strings.EqualFold(strings.TrimSpace(args[1]), string(model.BusinessAutre)) {
				return eris.Errorf("business set-type: unknown type %q (known: %s)", args[1], knownTypes())
			}
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.SetManualType(ctx, args[0], bt); err != nil {
			return eris.Wrap(err, "business set-type")
		}
		fmt.Fprintf(os.Stdout, "%s: manual type set to %q\n", args[0], bt)
		return nil
	},
}

func knownTypes() string {
	names := make([]string, 0, len(model.AllBusinessTypes))
	for _, bt := range model.AllBusinessTypes {
		names = append(names, string(bt))
	}
	return strings.Join(names, ", ")
}

// formatBusinessList writes a tabular list of businesses to out.
func formatBusinessList(out io.Writer, bs []model.Business) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTYPES\tMANUAL\tUPDATED")
	for _, b := range bs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			b.ID,
			b.Name,
			strings.Join(b.Types, ","),
			b.ManualType,
			b.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func init() {
	businessListCmd.Flags().Int("limit", 100, "max number of businesses")
	businessListCmd.Flags().Int("offset", 0, "number of businesses to skip")
	businessCmd.AddCommand(businessListCmd)
	businessCmd.AddCommand(businessSetTypeCmd)
	rootCmd.AddCommand(businessCmd)
}
