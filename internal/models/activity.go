package models

import (
	"slices"
	"time"
)

// Activity is one entry of the in-memory activity feed.
type Activity struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	ActorID     string    `json:"actor_id"`
	TaskID      string    `json:"task_id,omitempty"`
	CommentID   string    `json:"comment_id,omitempty"`
	Description string    `json:"description"`
	Mentions    []string  `json:"mentions,omitempty"`
	Assignees   []string  `json:"assignees,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Involves reports whether the activity concerns userID as actor,
// mentioned user, or assignee.
func (a Activity) Involves(userID string) bool {
	if userID == "" {
		return false
	}
	return a.ActorID == userID || slices.Contains(a.Mentions, userID) || slices.Contains(a.Assignees, userID)
}

// Notification is a message queued for one recipient.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Type        string    `json:"type"`
	ActorID     string    `json:"actor_id,omitempty"`
	TaskID      string    `json:"task_id,omitempty"`
	CommentID   string    `json:"comment_id,omitempty"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is a login session keyed by the hash of its bearer token.
type Session struct {
	TokenHash string     `json:"token_hash"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Active reports whether the session can still authenticate at now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
