package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rentfolio/billscan/internal/extract"
	"github.com/rentfolio/billscan/internal/model"
	"github.com/rentfolio/billscan/internal/store"
)

var matchCmd = &cobra.Command{
	Use:   "match <pdf>",
	Short: "Rank stored patterns against a bill PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("cli"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ext, err := initExtractor()
		if err != nil {
			return err
		}
		text, err := ext.ExtractText(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "match")
		}

		patterns, err := st.ListPatterns(ctx, store.PatternFilter{Limit: store.ListAll})
		if err != nil {
			return eris.Wrap(err, "match")
		}

		matches, err := extract.MatchAll(ctx, text, patterns)
		if err != nil {
			return eris.Wrap(err, "match")
		}

		if len(matches) == 0 {
			fmt.Fprintln(os.Stderr, "No stored patterns.")
			return nil
		}

		formatMatches(os.Stdout, matches)
		return nil
	},
}

func formatMatches(w io.Writer, matches []model.MatchResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONFIDENCE\tMATCHED\tPATTERN\tID")
	for _, m := range matches {
		fmt.Fprintf(tw, "%.2f\t%d/%d\t%s\t%s\n",
			m.Confidence, m.MatchedFields, m.TotalFields, m.PatternName, m.PatternID)
	}
	_ = tw.Flush()
}

func init() {
	rootCmd.AddCommand(matchCmd)
}
