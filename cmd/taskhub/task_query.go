package main

import (
	"github.com/spf13/cobra"

	"taskhub/internal/api"
	"taskhub/internal/config"
)

func newTaskListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		query    api.TaskQuery
		statuses string
		overdue  bool
		desc     bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks visible to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			query.Statuses = splitCommaList(statuses)
			query.SortDesc = desc
			if cmd.Flags().Changed("overdue") {
				query.Overdue = &overdue
			}

			return withClient(cfg, func(client *api.Client) error {
				tasks, err := client.ListTasks(cmd.Context(), query)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(tasks)
				}
				if len(tasks) == 0 {
					return writePlain("no tasks found\n")
				}
				return writeTaskList(tasks)
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&statuses, "status", "s", "", "comma-separated statuses")
	f.StringVarP(&query.Priority, "priority", "p", "", "filter by priority")
	f.StringVarP(&query.Category, "category", "c", "", "filter by category")
	f.StringVar(&query.Tag, "tag", "", "filter by tag")
	f.StringVar(&query.OwnerID, "owner", "", "filter by owner id")
	f.StringVar(&query.AssigneeID, "assignee", "", "filter by assignee id")
	f.StringVar(&query.Search, "search", "", "match title, description or tags")
	f.BoolVar(&overdue, "overdue", false, "only overdue (or, with =false, not overdue) tasks")
	f.BoolVar(&query.Watching, "watching", false, "only tasks you watch")
	f.BoolVar(&query.Mine, "mine", false, "only tasks you own, are assigned or collaborate on")
	f.StringVar(&query.SortBy, "sort", "", "sort key: created_at, updated_at, due_date, priority, title, status")
	f.BoolVar(&desc, "desc", false, "sort descending")
	f.IntVar(&query.Limit, "limit", 0, "maximum number of tasks")
	f.IntVar(&query.Offset, "offset", 0, "number of tasks to skip")
	return cmd
}

func newTaskUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		title, description, status string
		priority, category, tags   string
		due                        string
		clearDue                   bool
		expectedVersion            int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update task fields",
		Args:  requireTaskID,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed
			req := api.TaskUpdateRequest{
				Title:           optionalString(changed("title"), title),
				Description:     optionalString(changed("description"), description),
				Status:          optionalString(changed("status"), status),
				Priority:        optionalString(changed("priority"), priority),
				Category:        optionalString(changed("category"), category),
				ClearDueDate:    clearDue,
				ExpectedVersion: expectedVersion,
			}
			if changed("tags") {
				list := splitCommaList(tags)
				req.Tags = &list
			}
			if changed("due") {
				parsed, err := parseDueDate(due)
				if err != nil {
					return err
				}
				req.DueDate = &parsed
			}

			return withClient(cfg, func(client *api.Client) error {
				task, err := client.UpdateTask(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(task)
				}
				return writePlain("updated %s\n", formatTaskLine(task))
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.StringVarP(&description, "description", "d", "", "new description")
	f.StringVar(&status, "status", "", "new status")
	f.StringVarP(&priority, "priority", "p", "", "new priority")
	f.StringVarP(&category, "category", "c", "", "new category")
	f.StringVar(&tags, "tags", "", "replace tags (comma-separated)")
	f.StringVar(&due, "due", "", "new due date")
	f.BoolVar(&clearDue, "clear-due", false, "remove the due date")
	f.IntVar(&expectedVersion, "expected-version", 0, "fail if the task changed since this version")
	return cmd
}

func newTaskStatsCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the tasks visible to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				stats, err := client.TaskStats(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(stats)
				}
				return writePlain("total: %d\ncompleted: %d\noverdue: %d\ncompletion_rate: %.1f%%\n",
					stats.Total, stats.Completed, stats.Overdue, stats.CompletionRate)
			})
		},
	}
}
