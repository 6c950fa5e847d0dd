package models

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

var mentionPattern = regexp.MustCompile(`(?:^|[^\w@])@([a-zA-Z0-9](?:[a-zA-Z0-9._-]*[a-zA-Z0-9])?)`)

// Comment is a message on a task, optionally replying to another comment.
type Comment struct {
	ID               string    `json:"id"`
	TaskID           string    `json:"task_id"`
	ParentID         string    `json:"parent_id,omitempty"`
	AuthorID         string    `json:"author_id"`
	Content          string    `json:"content"`
	Mentions         []string  `json:"mentions,omitempty"`
	MentionedUserIDs []string  `json:"mentioned_user_ids,omitempty"`
	Resolved         bool      `json:"resolved"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ValidateCommentContent trims content and enforces length limits.
func ValidateCommentContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", fmt.Errorf("comment content is required")
	}
	if len(content) > MaxCommentLength {
		return "", fmt.Errorf("comment must be at most %d characters", MaxCommentLength)
	}
	return content, nil
}

// ExtractMentions returns the lowercase usernames referenced as @name,
// deduplicated in order of first appearance. Email addresses are ignored.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		name := strings.ToLower(match[1])
		if slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

func (c Comment) Clone() Comment {
	c.Mentions = slices.Clone(c.Mentions)
	c.MentionedUserIDs = slices.Clone(c.MentionedUserIDs)
	return c
}
