package main

import (
	"github.com/spf13/cobra"

	"taskhub/internal/api"
	"taskhub/internal/config"
	"taskhub/internal/models"
)

func newFeedCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		taskID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show recent activity on your tasks, or on one task with --task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				var (
					entries []models.Activity
					err     error
				)
				if taskID != "" {
					entries, err = client.TaskActivity(cmd.Context(), taskID, limit)
				} else {
					entries, err = client.ActivityFeed(cmd.Context(), limit)
				}
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(entries)
				}
				if len(entries) == 0 {
					return writePlain("no activity\n")
				}
				return writeActivity(entries)
			})
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "only activity on this task")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries")
	return cmd
}
