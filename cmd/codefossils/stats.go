package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"codefossils/apiclient"
	"codefossils/models"
)

func newStatsCmd(a *app) *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how many repositories each category holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiURL == "" {
				apiURL = a.cfg.APIBaseURL
			}
			client, err := apiclient.NewClient(apiURL)
			if err != nil {
				return err
			}
			stats, err := client.Stats(cmd.Context())
			if err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", "", "API base URL (defaults to API_BASE_URL)")
	return cmd
}

func renderStats(w io.Writer, stats *models.StatsResponse) {
	fmt.Fprintf(w, "%-10s %6d\n", models.CategoryAll.Label(), stats.Total)
	for _, c := range models.Categories {
		if c == models.CategoryAll {
			continue
		}
		fmt.Fprintf(w, "%-10s %6d\n", c.Label(), stats.Categories[string(c)])
	}
}
