package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rentfolio/billscan/internal/export"
	"github.com/rentfolio/billscan/internal/extract"
	"github.com/rentfolio/billscan/internal/store"
)

var exportSamplePDF string

var exportCmd = &cobra.Command{
	Use:   "export <out.xlsx>",
	Short: "Export stored patterns to a spreadsheet",
	Long:  "Writes all stored patterns and their extraction rules to an XLSX workbook. With --pdf, also runs every pattern against the given bill and includes the extracted values.",
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

		patterns, err := st.ListPatterns(ctx, store.PatternFilter{Limit: store.ListAll})
		if err != nil {
			return eris.Wrap(err, "export")
		}

		var extractions []export.Extraction
		if exportSamplePDF != "" {
			ext, err := initExtractor()
			if err != nil {
				return err
			}
			text, err := ext.ExtractText(ctx, exportSamplePDF)
			if err != nil {
				return eris.Wrap(err, "export")
			}
			for _, p := range patterns {
				extractions = append(extractions, export.Extraction{
					Pattern: p,
					Values:  extract.Extract(text, p),
				})
			}
		}

		if err := export.WritePatternsXLSX(args[0], patterns, extractions); err != nil {
			return err
		}

		fmt.Printf("Wrote %d patterns to %s\n", len(patterns), args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportSamplePDF, "pdf", "", "sample bill PDF to run every pattern against")
	rootCmd.AddCommand(exportCmd)
}
