package models

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"
)

// Task is a unit of work owned by one user and optionally shared with others.
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	OwnerID        string     `json:"owner_id"`
	AssigneeID     string     `json:"assignee_id,omitempty"`
	Status         TaskStatus `json:"status"`
	PreviousStatus TaskStatus `json:"previous_status,omitempty"`
	Priority       Priority   `json:"priority"`
	Category       Category   `json:"category"`
	Tags           []string   `json:"tags,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Comments       []Comment  `json:"comments,omitempty"`
	Collaborators  []string   `json:"collaborators,omitempty"`
	SharedWith     []string   `json:"shared_with,omitempty"`
	Watchers       []string   `json:"watchers,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Version        int        `json:"version"`
}

// Validate checks field constraints. It does not touch timestamps.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > MaxTitleLength {
		return fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	}
	if len(t.Description) > MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	if strings.TrimSpace(t.OwnerID) == "" {
		return fmt.Errorf("owner_id is required")
	}
	if !IsValidStatus(t.Status) {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	if !IsValidPriority(t.Priority) {
		return fmt.Errorf("invalid priority: %s", t.Priority)
	}
	if !IsValidCategory(t.Category) {
		return fmt.Errorf("invalid category: %s", t.Category)
	}
	return nil
}

// ApplyDefaults fills unset enum fields.
func (t *Task) ApplyDefaults() {
	t.Title = strings.TrimSpace(t.Title)
	if t.Status == "" {
		t.Status = DefaultStatus
	}
	if t.Priority == "" {
		t.Priority = DefaultPriority
	}
	if t.Category == "" {
		t.Category = DefaultCategory
	}
	t.Tags = NormalizeTags(t.Tags)
}

func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsOverdue reports whether the task has a due date in the past and is still open.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.IsCompleted() {
		return false
	}
	return t.DueDate.Before(now)
}

// SetStatus moves the task to status and maintains CompletedAt.
func (t *Task) SetStatus(status TaskStatus, now time.Time) {
	if status == t.Status {
		return
	}
	if status == StatusCompleted {
		t.PreviousStatus = t.Status
		completed := now
		t.CompletedAt = &completed
	} else {
		t.CompletedAt = nil
	}
	t.Status = status
	t.Touch(now)
}

// ToggleCompletion flips between completed and the status held before completion.
func (t *Task) ToggleCompletion(now time.Time) {
	if t.IsCompleted() {
		previous := t.PreviousStatus
		if previous == "" || previous == StatusCompleted {
			previous = StatusPending
		}
		t.SetStatus(previous, now)
		t.PreviousStatus = ""
		return
	}
	t.SetStatus(StatusCompleted, now)
}

// Touch records a modification.
func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = now
}

func (t *Task) IsOwner(userID string) bool {
	return userID != "" && t.OwnerID == userID
}

func (t *Task) IsAssignee(userID string) bool {
	return userID != "" && t.AssigneeID == userID
}

func (t *Task) IsCollaborator(userID string) bool {
	return slices.Contains(t.Collaborators, userID)
}

func (t *Task) IsSharedWith(userID string) bool {
	return slices.Contains(t.SharedWith, userID)
}

func (t *Task) IsWatcher(userID string) bool {
	return slices.Contains(t.Watchers, userID)
}

// IsVisibleTo reports whether userID has any standing on the task.
func (t *Task) IsVisibleTo(userID string) bool {
	return t.IsOwner(userID) || t.IsAssignee(userID) || t.IsCollaborator(userID) || t.IsSharedWith(userID)
}

// Share grants userID access at the given permission, replacing any earlier grant.
func (t *Task) Share(userID string, permission SharePermission) {
	t.Unshare(userID)
	if permission == ShareEdit {
		t.Collaborators = append(t.Collaborators, userID)
		return
	}
	t.SharedWith = append(t.SharedWith, userID)
}

// Unshare revokes access granted through Share and reports whether any existed.
func (t *Task) Unshare(userID string) bool {
	before := len(t.Collaborators) + len(t.SharedWith)
	t.Collaborators = removeString(t.Collaborators, userID)
	t.SharedWith = removeString(t.SharedWith, userID)
	return len(t.Collaborators)+len(t.SharedWith) != before
}

// AddWatcher adds userID to watchers and reports whether it was added.
func (t *Task) AddWatcher(userID string) bool {
	if userID == "" || t.IsWatcher(userID) {
		return false
	}
	t.Watchers = append(t.Watchers, userID)
	return true
}

func (t *Task) RemoveWatcher(userID string) bool {
	before := len(t.Watchers)
	t.Watchers = removeString(t.Watchers, userID)
	return len(t.Watchers) != before
}

// FindComment returns the index of the comment with id, or -1.
func (t *Task) FindComment(id string) int {
	for i := range t.Comments {
		if t.Comments[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveComment deletes a comment and its replies.
func (t *Task) RemoveComment(id string) bool {
	if t.FindComment(id) < 0 {
		return false
	}
	out := t.Comments[:0]
	for _, comment := range t.Comments {
		if comment.ID == id || comment.ParentID == id {
			continue
		}
		out = append(out, comment)
	}
	t.Comments = out
	return true
}

// Clone returns a deep copy safe to mutate independently.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	out := *t
	out.Tags = slices.Clone(t.Tags)
	out.Collaborators = slices.Clone(t.Collaborators)
	out.SharedWith = slices.Clone(t.SharedWith)
	out.Watchers = slices.Clone(t.Watchers)
	out.DueDate = cloneTime(t.DueDate)
	out.CompletedAt = cloneTime(t.CompletedAt)
	if t.Comments != nil {
		out.Comments = make([]Comment, len(t.Comments))
		for i := range t.Comments {
			out.Comments[i] = t.Comments[i].Clone()
		}
	}
	return &out
}

// NormalizeTags lowercases, trims, deduplicates and sorts tags.
func NormalizeTags(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		tag := strings.ToLower(strings.TrimSpace(value))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func removeString(values []string, target string) []string {
	if len(values) == 0 {
		return values
	}
	out := values[:0]
	for _, value := range values {
		if value != target {
			out = append(out, value)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	value := *t
	return &value
}
