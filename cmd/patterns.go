package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rentfolio/billscan/internal/model"
	"github.com/rentfolio/billscan/internal/store"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect stored extraction patterns",
	Long:  "Commands for listing, viewing, and deleting extraction patterns.",
}

// -- patterns list --

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List extraction patterns",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		billType, _ := cmd.Flags().GetString("bill-type")
		supplier, _ := cmd.Flags().GetString("supplier")
		limit, _ := cmd.Flags().GetInt("limit")

		patterns, err := st.ListPatterns(ctx, store.PatternFilter{
			BillType: model.BillType(billType),
			Supplier: supplier,
			Limit:    limit,
		})
		if err != nil {
			return eris.Wrap(err, "patterns list")
		}

		if len(patterns) == 0 {
			fmt.Fprintln(os.Stderr, "No patterns found.")
			return nil
		}

		formatPatternsList(os.Stdout, patterns)
		return nil
	},
}

// -- patterns show --

var patternsShowCmd = &cobra.Command{
	Use:   "show <pattern-id>",
	Short: "Show full details of a pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p, err := st.GetPattern(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "patterns show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

// -- patterns delete --

var patternsDeleteCmd = &cobra.Command{
	Use:   "delete <pattern-id>",
	Short: "Delete a pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeletePattern(ctx, args[0]); err != nil {
			return eris.Wrap(err, "patterns delete")
		}

		fmt.Println("Deleted", args[0])
		return nil
	},
}

func formatPatternsList(w io.Writer, patterns []model.ExtractionPattern) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSUPPLIER\tFIELDS\tCREATED")
	for _, p := range patterns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			p.ID, p.Name, p.BillType, p.Supplier,
			len(p.FieldPatterns), p.CreatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func init() {
	patternsListCmd.Flags().String("bill-type", "", "filter by bill type (rent, utilities, ebloc, other)")
	patternsListCmd.Flags().String("supplier", "", "filter by supplier")
	patternsListCmd.Flags().Int("limit", 0, "max patterns to list")

	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsShowCmd)
	patternsCmd.AddCommand(patternsDeleteCmd)
	rootCmd.AddCommand(patternsCmd)
}
