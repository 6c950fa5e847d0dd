package main

import (
	"github.com/spf13/cobra"

	"taskhub/internal/api"
	"taskhub/internal/config"
)

func newNotificationsCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var unread bool

	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Show your notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				list, err := client.Notifications(cmd.Context(), unread)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(list)
				}
				return writeNotifications(list)
			})
		},
	}

	cmd.Flags().BoolVar(&unread, "unread", false, "only unread notifications")
	cmd.AddCommand(newNotificationReadCmd(cfg), newNotificationReadAllCmd(cfg, jsonOutput))
	return cmd
}

func newNotificationReadCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>...",
		Short: "Mark notifications read",
		Args:  requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				for _, id := range args {
					if err := client.MarkNotificationRead(cmd.Context(), id); err != nil {
						return err
					}
				}
				return writePlain("marked %d notification(s) read\n", len(args))
			})
		},
	}
}

func newNotificationReadAllCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				count, err := client.MarkAllNotificationsRead(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]int{"marked": count})
				}
				return writePlain("marked %d notification(s) read\n", count)
			})
		},
	}
}
