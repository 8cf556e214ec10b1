package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rentfolio/billscan/internal/extract"
	"github.com/rentfolio/billscan/internal/model"
)

var extractPatternID string

var extractCmd = &cobra.Command{
	Use:   "extract <pdf>",
	Short: "Extract bill fields from a PDF using a stored pattern",
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

		p, err := st.GetPattern(ctx, extractPatternID)
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		ext, err := initExtractor()
		if err != nil {
			return err
		}
		text, err := ext.ExtractText(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		data := extract.Extract(text, *p)
		zap.L().Info("extraction complete",
			zap.String("pattern", p.Name),
			zap.Int("fields", len(data)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(model.ExtractionResult{
			PatternID:     p.ID,
			ExtractedData: data,
		})
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractPatternID, "pattern", "", "stored pattern id (required)")
	_ = extractCmd.MarkFlagRequired("pattern")
	rootCmd.AddCommand(extractCmd)
}
