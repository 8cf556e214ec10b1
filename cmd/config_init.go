package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = `# billscan configuration.
# Every key can also be set via environment, prefixed with BILLSCAN_
# and dots replaced by underscores (e.g. BILLSCAN_STORE_DRIVER).
`

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml in the current directory",
	RunE: func(_ *cobra.Command, _ []string) error {
		const path = "config.yaml"

		if !configInitForce {
			if _, err := os.Stat(path); err == nil {
				return eris.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}

		// cfg holds the defaults at this point: PersistentPreRunE loaded
		// them and no config file was required.
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return eris.Wrap(err, "config init: marshal defaults")
		}

		if err := os.WriteFile(path, append([]byte(configHeader), out...), 0o644); err != nil {
			return eris.Wrap(err, "config init: write file")
		}

		fmt.Println("Wrote", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config.yaml")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
