package events

import (
	"time"

	"taskhub/internal/models"
)

// Type names a domain event. Values double as AMQP routing keys.
type Type string

const (
	TaskCreated       Type = "task.created"
	TaskUpdated       Type = "task.updated"
	TaskDeleted       Type = "task.deleted"
	TaskStatusChanged Type = "task.status_changed"
	TaskAssigned      Type = "task.assigned"
	TaskShared        Type = "task.shared"
	TaskUnshared      Type = "task.unshared"
	TaskWatched       Type = "task.watched"
	TaskUnwatched     Type = "task.unwatched"
	CommentAdded      Type = "comment.added"
	CommentUpdated    Type = "comment.updated"
	CommentDeleted    Type = "comment.deleted"
	CommentResolved   Type = "comment.resolved"
	UserCreated       Type = "user.created"
	UserUpdated       Type = "user.updated"
	UserDeleted       Type = "user.deleted"
)

// AllTypes lists every event type in declaration order.
func AllTypes() []Type {
	return []Type{
		TaskCreated, TaskUpdated, TaskDeleted, TaskStatusChanged, TaskAssigned,
		TaskShared, TaskUnshared, TaskWatched, TaskUnwatched,
		CommentAdded, CommentUpdated, CommentDeleted, CommentResolved,
		UserCreated, UserUpdated, UserDeleted,
	}
}

// Event is a state change published after it has been persisted.
type Event struct {
	Seq     uint64 `json:"seq"`
	Type    Type   `json:"type"`
	ActorID string `json:"actor_id,omitempty"`
	TaskID  string `json:"task_id,omitempty"`
	// Task is the task after the change; for deletions, before it.
	Task    *models.Task    `json:"task,omitempty"`
	Comment *models.Comment `json:"comment,omitempty"`
	User    *models.User    `json:"user,omitempty"`
	// TargetUserID is the assignee, share target, or watcher concerned.
	TargetUserID string `json:"target_user_id,omitempty"`
	// Mentions holds user ids mentioned by a comment.
	Mentions   []string       `json:"mentions,omitempty"`
	Changes    map[string]any `json:"changes,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// TaskTitle returns the task title or the task id when unavailable.
func (e Event) TaskTitle() string {
	if e.Task != nil && e.Task.Title != "" {
		return e.Task.Title
	}
	return e.TaskID
}
