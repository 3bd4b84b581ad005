package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/docutura/docutura/internal/api"
	"github.com/docutura/docutura/internal/config"
	"github.com/docutura/docutura/internal/extract"
	"github.com/docutura/docutura/internal/pipeline"
	"github.com/docutura/docutura/internal/plugins"
)

var (
	convertPlugin  string
	convertFull    bool
	convertVerbose bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <interchange.json>",
	Short: "Reconstruct and validate logical tables from an extraction document",
	Long: `Convert reads an extraction interchange document (the JSON the
upstream extractor emits), detects the document type, reconstructs logical
tables across page boundaries, and validates them.

The validation report describes the data; it never blocks conversion. The
command fails only when the configuration is malformed or the input holds
no rows at all.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if convertVerbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cm.Get()
		if convertPlugin != "" {
			cfg.Plugins.Force = convertPlugin
		}

		doc, err := extract.Load(args[0])
		if err != nil {
			return err
		}

		runner := pipeline.NewRunner(pipeline.RunnerConfig{
			Config:  cfg,
			Plugins: plugins.NewDefaultRegistry(logger),
			Logger:  logger,
		})
		res, err := runner.Convert(cmd.Context(), doc)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}

		if convertFull {
			return api.Output(res)
		}
		return api.Output(struct {
			Summary pipeline.Summary `json:"summary" yaml:"summary"`
			Report  any              `json:"report" yaml:"report"`
		}{Summary: res.Summarize(), Report: res.Report})
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertPlugin, "plugin", "", "force a document-type plugin, skipping detection")
	convertCmd.Flags().BoolVar(&convertFull, "full", false, "output the full result including all tables")
	convertCmd.Flags().BoolVarP(&convertVerbose, "verbose", "v", false, "verbose logging")
}
