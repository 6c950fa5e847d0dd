package main

import (
	"strings"

	"github.com/spf13/cobra"

	"taskhub/internal/api"
	"taskhub/internal/config"
	"taskhub/internal/models"
)

func newCommentCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Discuss tasks; @username mentions notify the user",
	}
	cmd.AddCommand(
		newCommentAddCmd(cfg, jsonOutput),
		newCommentListCmd(cfg, jsonOutput),
		newCommentEditCmd(cfg, jsonOutput),
		newCommentDeleteCmd(cfg),
		newCommentResolveCmd(cfg, jsonOutput),
	)
	return cmd
}

func newCommentAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "add <task-id> <text>...",
		Short: "Comment on a task",
		Args:  requireAtLeastArgs(2, "task id and comment text are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.CommentCreateRequest{Content: strings.Join(args[1:], " "), ParentID: parentID}
			return withClient(cfg, func(client *api.Client) error {
				comment, err := client.AddComment(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(comment)
				}
				return writePlain("added comment %s\n", comment.ID)
			})
		},
	}

	cmd.Flags().StringVar(&parentID, "reply-to", "", "parent comment id")
	return cmd
}

func newCommentListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list <task-id>",
		Short: "List a task's comments",
		Args:  requireTaskID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				comments, err := client.ListComments(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(comments)
				}
				if len(comments) == 0 {
					return writePlain("no comments\n")
				}
				return writeComments(comments)
			})
		},
	}
}

func newCommentEditCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <task-id> <comment-id> <text>...",
		Short: "Edit one of your comments",
		Args:  requireAtLeastArgs(3, "task id, comment id and text are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.CommentUpdateRequest{Content: strings.Join(args[2:], " ")}
			return withClient(cfg, func(client *api.Client) error {
				comment, err := client.EditComment(cmd.Context(), args[0], args[1], req)
				if err != nil {
					return err
				}
				return writeComment(comment, *jsonOutput)
			})
		},
	}
}

func newCommentDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task-id> <comment-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a comment and its replies",
		Args:    requireExactlyArgs(2, "task id and comment id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				if err := client.DeleteComment(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				return writePlain("deleted comment %s\n", args[1])
			})
		},
	}
}

func newCommentResolveCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var reopen bool

	cmd := &cobra.Command{
		Use:   "resolve <task-id> <comment-id>",
		Short: "Mark a comment resolved",
		Args:  requireExactlyArgs(2, "task id and comment id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				comment, err := client.ResolveComment(cmd.Context(), args[0], args[1], !reopen)
				if err != nil {
					return err
				}
				return writeComment(comment, *jsonOutput)
			})
		},
	}

	cmd.Flags().BoolVar(&reopen, "reopen", false, "clear the resolved flag instead")
	return cmd
}

func writeComment(comment models.Comment, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(comment)
	}
	return writeComments([]models.Comment{comment})
}
