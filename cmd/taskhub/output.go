package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"taskhub/internal/api"
	"taskhub/internal/format"
	"taskhub/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeTaskList(tasks []models.Task) error {
	for _, task := range tasks {
		if err := writePlain("%s\n", formatTaskLine(task)); err != nil {
			return err
		}
	}
	return nil
}

func writeTaskDetail(task models.Task) error {
	lines := []string{
		fmt.Sprintf("id: %s", task.ID),
		fmt.Sprintf("title: %s", task.Title),
		fmt.Sprintf("status: %s", task.Status),
		fmt.Sprintf("priority: %s", task.Priority),
		fmt.Sprintf("category: %s", task.Category),
		fmt.Sprintf("owner: %s", task.OwnerID),
		fmt.Sprintf("version: %d", task.Version),
		fmt.Sprintf("created_at: %s", formatTime(task.CreatedAt)),
		fmt.Sprintf("updated_at: %s", formatTime(task.UpdatedAt)),
	}

	if task.AssigneeID != "" {
		lines = append(lines, fmt.Sprintf("assignee: %s", task.AssigneeID))
	}
	if task.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", task.Description))
	}
	if task.DueDate != nil {
		lines = append(lines, fmt.Sprintf("due_date: %s", formatTime(*task.DueDate)))
	}
	if task.CompletedAt != nil {
		lines = append(lines, fmt.Sprintf("completed_at: %s", formatTime(*task.CompletedAt)))
	}
	if len(task.Tags) > 0 {
		lines = append(lines, fmt.Sprintf("tags: %s", strings.Join(task.Tags, ", ")))
	}
	if len(task.Collaborators) > 0 {
		lines = append(lines, fmt.Sprintf("collaborators: %s", strings.Join(task.Collaborators, ", ")))
	}
	if len(task.SharedWith) > 0 {
		lines = append(lines, fmt.Sprintf("shared_with: %s", strings.Join(task.SharedWith, ", ")))
	}
	if len(task.Watchers) > 0 {
		lines = append(lines, fmt.Sprintf("watchers: %s", strings.Join(task.Watchers, ", ")))
	}
	if len(task.Comments) > 0 {
		lines = append(lines, fmt.Sprintf("comments: %d", len(task.Comments)))
	}

	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatTaskLine(task models.Task) string {
	marker := "○"
	switch task.Status {
	case models.StatusInProgress:
		marker = "◐"
	case models.StatusCompleted:
		marker = "●"
	}
	line := fmt.Sprintf("%s %s [%s] [%s] - %s", marker, task.ID, task.Priority, task.Category, task.Title)
	if task.DueDate != nil {
		line += " (due " + task.DueDate.UTC().Format(time.DateOnly) + ")"
	}
	return line
}

func writeComments(comments []models.Comment) error {
	for _, c := range comments {
		indent := ""
		if c.ParentID != "" {
			indent = "  "
		}
		state := ""
		if c.Resolved {
			state = " [resolved]"
		}
		if err := writePlain("%s%s %s %s%s: %s\n", indent, c.ID, formatTime(c.CreatedAt), c.AuthorID, state, c.Content); err != nil {
			return err
		}
	}
	return nil
}

func writeActivity(entries []models.Activity) error {
	for _, a := range entries {
		if err := writePlain("%s %s %s\n", formatTime(a.CreatedAt), a.Type, a.Description); err != nil {
			return err
		}
	}
	return nil
}

func writeNotifications(list api.NotificationList) error {
	for _, n := range list.Items {
		mark := " "
		if !n.Read {
			mark = "*"
		}
		if err := writePlain("%s %s %s %s\n", mark, n.ID, formatTime(n.CreatedAt), n.Message); err != nil {
			return err
		}
	}
	return writePlain("%d unread\n", list.Unread)
}

func writeUserList(users []models.User) error {
	if err := writePlain("USERNAME\tROLE\tSTATUS\tID\n"); err != nil {
		return err
	}
	for _, user := range users {
		status := "active"
		if !user.IsActive {
			status = "inactive"
		}
		if err := writePlain("%s\t%s\t%s\t%s\n", user.Username, user.Role, status, user.ID); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
