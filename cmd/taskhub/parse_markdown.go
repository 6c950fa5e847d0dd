package main

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"taskhub/internal/api"
)

var listItemRegex = regexp.MustCompile(`^\s*[-*]\s+(.*)$`)

// taskFrontMatter holds the defaults a Markdown task file applies to every
// list item.
type taskFrontMatter struct {
	Description string   `yaml:"description"`
	Status      string   `yaml:"status"`
	Priority    string   `yaml:"priority"`
	Category    string   `yaml:"category"`
	AssigneeID  string   `yaml:"assignee_id"`
	Tags        []string `yaml:"tags"`
	DueDate     string   `yaml:"due_date"`
}

func parseMarkdown(input string) (taskFrontMatter, []string, error) {
	var frontMatter taskFrontMatter
	content := input

	lines := strings.Split(input, "\n")
	if len(lines) >= 3 && strings.TrimSpace(lines[0]) == "---" {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				end = i
				break
			}
		}
		if end == -1 {
			return frontMatter, nil, fmt.Errorf("front matter not closed")
		}
		frontText := strings.Join(lines[1:end], "\n")
		if err := yaml.Unmarshal([]byte(frontText), &frontMatter); err != nil {
			return frontMatter, nil, fmt.Errorf("parse front matter: %w", err)
		}
		content = strings.Join(lines[end+1:], "\n")
	}

	items := []string{}
	for _, line := range strings.Split(content, "\n") {
		match := listItemRegex.FindStringSubmatch(line)
		if len(match) == 2 {
			item := strings.TrimSpace(match[1])
			if item != "" {
				items = append(items, item)
			}
		}
	}

	return frontMatter, items, nil
}

func (fm taskFrontMatter) request() (api.TaskCreateRequest, error) {
	req := api.TaskCreateRequest{Tags: fm.Tags}
	if fm.Description != "" {
		req.Description = &fm.Description
	}
	if fm.Status != "" {
		req.Status = &fm.Status
	}
	if fm.Priority != "" {
		req.Priority = &fm.Priority
	}
	if fm.Category != "" {
		req.Category = &fm.Category
	}
	if fm.AssigneeID != "" {
		req.AssigneeID = &fm.AssigneeID
	}
	if fm.DueDate != "" {
		due, err := parseDueDate(fm.DueDate)
		if err != nil {
			return req, err
		}
		req.DueDate = &due
	}
	return req, nil
}

// parseDueDate accepts RFC 3339 timestamps or plain dates.
func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q (want YYYY-MM-DD or RFC 3339)", raw)
	}
	return t.UTC(), nil
}
