package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskhub/internal/api"
	"taskhub/internal/config"
)

func newTaskCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"t"},
		Short:   "Create, query and change tasks",
	}
	cmd.AddCommand(
		newTaskCreateCmd(cfg, jsonOutput),
		newTaskListCmd(cfg, jsonOutput),
		newTaskShowCmd(cfg, jsonOutput),
		newTaskUpdateCmd(cfg, jsonOutput),
		newTaskDeleteCmd(cfg),
		newTaskToggleCmd(cfg, jsonOutput),
		newTaskAssignCmd(cfg, jsonOutput),
		newTaskShareCmd(cfg, jsonOutput),
		newTaskUnshareCmd(cfg, jsonOutput),
		newTaskWatchCmd(cfg, jsonOutput, "watch", "Watch a task for changes", true),
		newTaskWatchCmd(cfg, jsonOutput, "unwatch", "Stop watching a task", false),
		newTaskStatsCmd(cfg, jsonOutput),
	)
	return cmd
}

type taskCreateFlags struct {
	description, status, priority, category string
	assignee, tags, due, file               string
}

func newTaskCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var flags taskCreateFlags

	cmd := &cobra.Command{
		Use:   "create [<title>]",
		Short: "Create a task, or one task per list item with --file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := buildCreateRequests(cmd, flags, args)
			if err != nil {
				return err
			}

			return withClient(cfg, func(client *api.Client) error {
				for _, req := range requests {
					task, err := client.CreateTask(cmd.Context(), req)
					if err != nil {
						return err
					}
					if *jsonOutput {
						if err := writeJSON(task); err != nil {
							return err
						}
						continue
					}
					if err := writePlain("created %s\n", formatTaskLine(task)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.description, "description", "d", "", "task description")
	f.StringVar(&flags.status, "status", "", "status: pending, in-progress, completed")
	f.StringVarP(&flags.priority, "priority", "p", "", "priority: low, medium, high")
	f.StringVarP(&flags.category, "category", "c", "", "category: general, work, personal, shopping, health, other")
	f.StringVar(&flags.assignee, "assignee", "", "assignee user id")
	f.StringVar(&flags.tags, "tags", "", "comma-separated tags")
	f.StringVar(&flags.due, "due", "", "due date (YYYY-MM-DD or RFC 3339)")
	f.StringVarP(&flags.file, "file", "f", "", "Markdown file with optional front matter and one task per list item")
	return cmd
}

// buildCreateRequests merges the Markdown file defaults with explicit flags.
// Flags win over front matter.
func buildCreateRequests(cmd *cobra.Command, flags taskCreateFlags, args []string) ([]api.TaskCreateRequest, error) {
	base := api.TaskCreateRequest{}
	titles := args
	if flags.file != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("title argument and --file are mutually exclusive")
		}
		content, err := os.ReadFile(flags.file)
		if err != nil {
			return nil, err
		}
		frontMatter, items, err := parseMarkdown(string(content))
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("no list items found in %s", flags.file)
		}
		if base, err = frontMatter.request(); err != nil {
			return nil, err
		}
		titles = items
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("title is required")
	}

	changed := cmd.Flags().Changed
	if changed("description") {
		base.Description = &flags.description
	}
	if changed("status") {
		base.Status = &flags.status
	}
	if changed("priority") {
		base.Priority = &flags.priority
	}
	if changed("category") {
		base.Category = &flags.category
	}
	if changed("assignee") {
		base.AssigneeID = &flags.assignee
	}
	if changed("tags") {
		base.Tags = splitCommaList(flags.tags)
	}
	if changed("due") {
		due, err := parseDueDate(flags.due)
		if err != nil {
			return nil, err
		}
		base.DueDate = &due
	}

	requests := make([]api.TaskCreateRequest, 0, len(titles))
	for _, title := range titles {
		req := base
		req.Title = title
		requests = append(requests, req)
	}
	return requests, nil
}

func newTaskShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id> [<id>...]",
		Short: "Show task details",
		Args:  requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				for _, id := range args {
					task, err := client.GetTask(cmd.Context(), id)
					if err != nil {
						return err
					}
					if *jsonOutput {
						err = writeJSON(task)
					} else {
						err = writeTaskDetail(task)
					}
					if err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newTaskDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id> [<id>...]",
		Aliases: []string{"rm"},
		Short:   "Delete tasks",
		Args:    requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				for _, id := range args {
					if err := client.DeleteTask(cmd.Context(), id); err != nil {
						return err
					}
					if err := writePlain("deleted %s\n", id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newTaskToggleCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between completed and pending",
		Args:  requireTaskID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				task, err := client.ToggleTask(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(task)
				}
				return writePlain("%s\n", formatTaskLine(task))
			})
		},
	}
}
