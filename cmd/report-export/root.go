package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-report-export/internal/config"
)

// app carries the state shared by subcommands once configuration is loaded.
type app struct {
	configPath string
	cfg        config.Config
	logger     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "report-export",
		Short: "Export evaluated reports as spreadsheets or delimited text",
		Long: `report-export renders evaluated report data into downloadable files.

It can render a saved snapshot from disk or serve the download API
backed by the report request store.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cfg.Logging, cmd.ErrOrStderr())
			a.logger.WithField("command", cmd.Name()).Debug("command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a report-export.yaml file")

	rootCmd.AddCommand(newRenderCmd(a))
	rootCmd.AddCommand(newServeCmd(a))

	return rootCmd
}
