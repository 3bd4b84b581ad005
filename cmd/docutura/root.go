package main

import (
	"github.com/spf13/cobra"

	"github.com/docutura/docutura/internal/api"
	"github.com/docutura/docutura/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "docutura",
	Short: "Logical-table reconstruction and validation for page-fragmented documents",
	Long: `Docutura reconstructs semantically correct logical tables from
page-fragmented extraction output and validates them against deterministic
correctness rules.

A page break that splits a statistical distribution in half produces two
fragments that naive tooling treats as unrelated tables. Docutura stitches
those fragments back together (by score domain or by repeated header),
keeps the untouched per-page view for traceability, and reports every
correctness violation it finds without ever repairing data.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.docutura/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(configCmd)
}
