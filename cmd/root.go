package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rentfolio/billscan/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "billscan",
	Short: "Rule-based data extraction for rental property bills",
	Long:  "Stores label-based extraction patterns, turns uploaded bill PDFs into text, and pulls amounts, dates, IBANs and other fields out of them.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
