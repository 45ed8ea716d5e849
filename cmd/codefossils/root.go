package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codefossils/config"
	"codefossils/logger"
)

type app struct {
	cfg        *config.Config
	configFile string
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.NewConfig()}

	root := &cobra.Command{
		Use:   "codefossils",
		Short: "Dig up abandoned but promising GitHub repositories",
		Long: `codefossils finds repositories nobody has pushed to in years, gives each
an idea score and a category, and lets you browse them.

Run "codefossils serve" for the API and ingestion scheduler, then
"codefossils browse" to page through the results.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.LoadFile(a.configFile); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := logger.Initialize(a.cfg.LogLevel); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", config.DefaultConfigFile, "path to an optional .env file")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newBrowseCmd(a))
	root.AddCommand(newStatsCmd(a))
	return root
}
