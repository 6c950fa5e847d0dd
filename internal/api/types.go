package api

import (
	"encoding/json"
	"time"

	"taskhub/internal/models"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	// ErrorCode is the numeric code the HTTP server adds to failures.
	ErrorCode int `json:"error_code,omitempty"`
}

// rawEnvelope is Envelope with data left undecoded.
type rawEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Message   string          `json:"message,omitempty"`
	Error     string          `json:"error,omitempty"`
	Code      string          `json:"code,omitempty"`
	ErrorCode int             `json:"error_code,omitempty"`
}

// TaskCreateRequest defines the payload for creating a task.
type TaskCreateRequest struct {
	Title       string     `json:"title" yaml:"title"`
	Description *string    `json:"description,omitempty" yaml:"description,omitempty"`
	Status      *string    `json:"status,omitempty" yaml:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty" yaml:"priority,omitempty"`
	Category    *string    `json:"category,omitempty" yaml:"category,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty" yaml:"assignee_id,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
}

// TaskUpdateRequest defines the payload for updating a task. Assignment
// and sharing have their own endpoints.
type TaskUpdateRequest struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Status       *string    `json:"status,omitempty"`
	Priority     *string    `json:"priority,omitempty"`
	Category     *string    `json:"category,omitempty"`
	Tags         *[]string  `json:"tags,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ClearDueDate bool       `json:"clear_due_date,omitempty"`
	// ExpectedVersion makes the update fail when the task changed since it was read.
	ExpectedVersion int `json:"expected_version,omitempty"`
}

// AssignRequest sets or clears a task's assignee.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// ShareRequest grants a user access to a task.
type ShareRequest struct {
	UserID     string `json:"user_id"`
	Permission string `json:"permission,omitempty"`
}

// TaskStats summarizes the tasks visible to a user.
type TaskStats struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	Overdue        int            `json:"overdue"`
	CompletionRate float64        `json:"completion_rate"`
	ByStatus       map[string]int `json:"by_status"`
	ByPriority     map[string]int `json:"by_priority"`
	ByCategory     map[string]int `json:"by_category"`
}

// UserCreateRequest registers a user.
type UserCreateRequest struct {
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name,omitempty"`
	Password    string         `json:"password,omitempty"`
	Role        string         `json:"role,omitempty"`
	Teams       []string       `json:"teams,omitempty"`
	Skills      []models.Skill `json:"skills,omitempty"`
}

// UserUpdateRequest changes profile fields. Role and IsActive are admin-only.
type UserUpdateRequest struct {
	Email           *string         `json:"email,omitempty"`
	DisplayName     *string         `json:"display_name,omitempty"`
	Role            *string         `json:"role,omitempty"`
	IsActive        *bool           `json:"is_active,omitempty"`
	Teams           *[]string       `json:"teams,omitempty"`
	Skills          *[]models.Skill `json:"skills,omitempty"`
	ExpectedVersion int             `json:"expected_version,omitempty"`
}

// PasswordRequest sets a user's password. CurrentPassword is required
// when users change their own password.
type PasswordRequest struct {
	Password        string `json:"password"`
	CurrentPassword string `json:"current_password,omitempty"`
}

// LoginRequest is the payload for POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries a new bearer token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// CommentCreateRequest adds a comment, optionally as a reply.
type CommentCreateRequest struct {
	Content  string `json:"content"`
	ParentID string `json:"parent_id,omitempty"`
}

// CommentUpdateRequest edits a comment's content.
type CommentUpdateRequest struct {
	Content string `json:"content"`
}

// ResolveRequest sets a comment's resolved flag.
type ResolveRequest struct {
	Resolved bool `json:"resolved"`
}

// NotificationList is a recipient's inbox.
type NotificationList struct {
	Items  []models.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

// HealthResponse is the response from GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
