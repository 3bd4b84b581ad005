package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/docutura/docutura/internal/api"
	"github.com/docutura/docutura/internal/extract"
	"github.com/docutura/docutura/internal/plugins"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Manage document-type plugins",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered plugins",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := plugins.NewDefaultRegistry(slog.Default())
		return api.Output(struct {
			Plugins []string `json:"plugins" yaml:"plugins"`
		}{Plugins: reg.IDs()})
	},
}

var pluginsDetectCmd = &cobra.Command{
	Use:   "detect <interchange.json>",
	Short: "Run document-type detection without converting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := extract.Load(args[0])
		if err != nil {
			return err
		}
		reg := plugins.NewDefaultRegistry(slog.Default())
		in := plugins.Input{Pages: doc.PageTables(), PageTexts: doc.PageTexts()}

		p, det, ok := reg.Detect(in, 0)
		if !ok {
			return api.Output(struct {
				Detected bool `json:"detected" yaml:"detected"`
			}{Detected: false})
		}
		return api.Output(struct {
			Detected  bool              `json:"detected" yaml:"detected"`
			Detection plugins.Detection `json:"detection" yaml:"detection"`
			Version   string            `json:"version" yaml:"version"`
		}{Detected: true, Detection: det, Version: p.Version()})
	},
}

func init() {
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsDetectCmd)
}
