package collab

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/models"
)

// Default capacities of the in-memory logs.
const (
	DefaultFeedLimit  = 1000
	DefaultInboxLimit = 100
)

// Feed is a capped, append-only activity log. When full, the oldest
// entries are dropped.
type Feed struct {
	mu    sync.RWMutex
	limit int
	items []models.Activity
	now   func() time.Time
}

// NewFeed returns a feed holding at most limit entries; limit <= 0 selects
// DefaultFeedLimit.
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return &Feed{limit: limit, now: func() time.Time { return time.Now().UTC() }}
}

// Record appends a, assigning an id and timestamp when missing.
func (f *Feed) Record(a models.Activity) models.Activity {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = f.now()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, a)
	if over := len(f.items) - f.limit; over > 0 {
		f.items = slices.Delete(f.items, 0, over)
	}
	return a
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (f *Feed) Recent(limit int) []models.Activity {
	return f.collect(limit, func(models.Activity) bool { return true })
}

// ForUser returns entries involving userID, newest first.
func (f *Feed) ForUser(userID string, limit int) []models.Activity {
	return f.collect(limit, func(a models.Activity) bool { return a.Involves(userID) })
}

// ForTask returns entries about taskID, newest first.
func (f *Feed) ForTask(taskID string, limit int) []models.Activity {
	return f.collect(limit, func(a models.Activity) bool { return a.TaskID == taskID })
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}

func (f *Feed) collect(limit int, keep func(models.Activity) bool) []models.Activity {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := []models.Activity{}
	for i := len(f.items) - 1; i >= 0; i-- {
		if !keep(f.items[i]) {
			continue
		}
		a := f.items[i]
		a.Mentions = slices.Clone(a.Mentions)
		a.Assignees = slices.Clone(a.Assignees)
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
