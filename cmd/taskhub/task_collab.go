package main

import (
	"github.com/spf13/cobra"

	"taskhub/internal/api"
	"taskhub/internal/config"
	"taskhub/internal/models"
)

func newTaskAssignCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <id> [<user-id>]",
		Short: "Assign a task, or clear the assignee when no user is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.AssignRequest{}
			if len(args) == 2 {
				req.AssigneeID = args[1]
			}
			return runTaskChange(cfg, jsonOutput, func(client *api.Client) (models.Task, error) {
				return client.AssignTask(cmd.Context(), args[0], req)
			})
		},
	}
}

func newTaskShareCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var permission string

	cmd := &cobra.Command{
		Use:   "share <id> <user-id>",
		Short: "Share a task with a user",
		Args:  requireExactlyArgs(2, "task id and user id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.ShareRequest{UserID: args[1], Permission: permission}
			return runTaskChange(cfg, jsonOutput, func(client *api.Client) (models.Task, error) {
				return client.ShareTask(cmd.Context(), args[0], req)
			})
		},
	}

	cmd.Flags().StringVar(&permission, "permission", string(models.ShareView), "view or edit")
	return cmd
}

func newTaskUnshareCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "unshare <id> <user-id>",
		Short: "Revoke a user's access to a task",
		Args:  requireExactlyArgs(2, "task id and user id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskChange(cfg, jsonOutput, func(client *api.Client) (models.Task, error) {
				return client.UnshareTask(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func newTaskWatchCmd(cfg *config.Config, jsonOutput *bool, name, short string, watch bool) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id>",
		Short: short,
		Args:  requireTaskID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskChange(cfg, jsonOutput, func(client *api.Client) (models.Task, error) {
				if watch {
					return client.WatchTask(cmd.Context(), args[0])
				}
				return client.UnwatchTask(cmd.Context(), args[0])
			})
		},
	}
}

func runTaskChange(cfg *config.Config, jsonOutput *bool, change func(*api.Client) (models.Task, error)) error {
	return withClient(cfg, func(client *api.Client) error {
		task, err := change(client)
		if err != nil {
			return err
		}
		if *jsonOutput {
			return writeJSON(task)
		}
		return writeTaskDetail(task)
	})
}
