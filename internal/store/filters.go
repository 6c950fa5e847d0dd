package store

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"taskhub/internal/models"
)

// Sort keys accepted by TaskFilter.SortBy.
const (
	SortCreatedAt = "created_at"
	SortUpdatedAt = "updated_at"
	SortDueDate   = "due_date"
	SortPriority  = "priority"
	SortTitle     = "title"
	SortStatus    = "status"
	SortUsername  = "username"
)

var taskSortKeys = []string{SortCreatedAt, SortUpdatedAt, SortDueDate, SortPriority, SortTitle, SortStatus}

// TaskFilter controls filtering, sorting, and pagination for task queries.
type TaskFilter struct {
	Statuses   []models.TaskStatus
	Priority   models.Priority
	Category   models.Category
	OwnerID    string
	AssigneeID string
	Tag        string
	// VisibleTo limits results to tasks the user owns, is assigned, or was shared.
	VisibleTo string
	// WatchedBy limits results to tasks the user watches.
	WatchedBy string
	Query     string
	Overdue   *bool
	DueBefore *time.Time
	// Now is the reference time for Overdue; zero means time.Now.
	Now      time.Time
	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}

// ValidateSortKey checks a task sort key; empty selects created_at.
func ValidateSortKey(key string) error {
	if key == "" || slices.Contains(taskSortKeys, key) {
		return nil
	}
	return fmt.Errorf("invalid sort key %q (want one of %s)", key, strings.Join(taskSortKeys, ", "))
}

func (f TaskFilter) matches(task *models.Task, now time.Time) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, task.Status) {
		return false
	}
	if f.Priority != "" && task.Priority != f.Priority {
		return false
	}
	if f.Category != "" && task.Category != f.Category {
		return false
	}
	if f.OwnerID != "" && task.OwnerID != f.OwnerID {
		return false
	}
	if f.AssigneeID != "" && task.AssigneeID != f.AssigneeID {
		return false
	}
	if f.Tag != "" && !slices.Contains(task.Tags, strings.ToLower(strings.TrimSpace(f.Tag))) {
		return false
	}
	if f.VisibleTo != "" && !task.IsVisibleTo(f.VisibleTo) {
		return false
	}
	if f.WatchedBy != "" && !task.IsWatcher(f.WatchedBy) {
		return false
	}
	if f.Overdue != nil && task.IsOverdue(now) != *f.Overdue {
		return false
	}
	if f.DueBefore != nil && (task.DueDate == nil || !task.DueDate.Before(*f.DueBefore)) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(task.Title), q) && !strings.Contains(strings.ToLower(task.Description), q) {
			return false
		}
	}
	return true
}

func (f TaskFilter) now() time.Time {
	if f.Now.IsZero() {
		return time.Now().UTC()
	}
	return f.Now
}

// apply filters, sorts, and paginates tasks, returning copies.
func (f TaskFilter) apply(items []*models.Task) []models.Task {
	now := f.now()
	out := make([]models.Task, 0, len(items))
	for _, item := range items {
		if f.matches(item, now) {
			out = append(out, *item)
		}
	}
	sortTasks(out, f.SortBy, f.SortDesc)
	return paginate(out, f.Limit, f.Offset)
}

func (f TaskFilter) count(items []*models.Task) int {
	now := f.now()
	n := 0
	for _, item := range items {
		if f.matches(item, now) {
			n++
		}
	}
	return n
}

func sortTasks(tasks []models.Task, key string, desc bool) {
	less := func(a, b *models.Task) int {
		switch key {
		case SortUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case SortDueDate:
			return compareDue(a.DueDate, b.DueDate)
		case SortPriority:
			return models.PriorityRank(a.Priority) - models.PriorityRank(b.Priority)
		case SortTitle:
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case SortStatus:
			return strings.Compare(string(a.Status), string(b.Status))
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		c := less(&tasks[i], &tasks[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compareDue orders tasks without a due date last.
func compareDue(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// UserFilter controls filtering and pagination for user queries.
type UserFilter struct {
	Role     models.Role
	Active   *bool
	Team     string
	Skill    string
	Query    string
	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}

func (f UserFilter) matches(user *models.User) bool {
	if f.Role != "" && user.Role != f.Role {
		return false
	}
	if f.Active != nil && user.IsActive != *f.Active {
		return false
	}
	if f.Team != "" && !user.InTeam(f.Team) {
		return false
	}
	if f.Skill != "" && !user.HasSkill(f.Skill, models.SkillLevelMin) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(user.Username, q) &&
			!strings.Contains(strings.ToLower(user.DisplayName), q) &&
			!strings.Contains(user.Email, q) {
			return false
		}
	}
	return true
}

func (f UserFilter) apply(items []*models.User) []models.User {
	out := make([]models.User, 0, len(items))
	for _, item := range items {
		if f.matches(item) {
			out = append(out, *item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		var c int
		if f.SortBy == SortUsername {
			c = strings.Compare(out[i].Username, out[j].Username)
		} else {
			c = out[i].CreatedAt.Compare(out[j].CreatedAt)
		}
		if f.SortDesc {
			return c > 0
		}
		return c < 0
	})
	return paginate(out, f.Limit, f.Offset)
}
