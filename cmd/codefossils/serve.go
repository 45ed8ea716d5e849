package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"codefossils/logger"
	"codefossils/service"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the ingestion scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service.NewService(a.cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := svc.Close(); err != nil {
					logger.Error("Error during service shutdown", zap.Error(err))
				}
			}()

			return svc.Start()
		},
	}
}
