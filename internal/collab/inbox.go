package collab

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/models"
)

// Inbox holds notifications per recipient, keeping the newest limit
// entries for each.
type Inbox struct {
	mu    sync.RWMutex
	limit int
	boxes map[string][]models.Notification
	now   func() time.Time
}

// NewInbox returns an inbox; limit <= 0 selects DefaultInboxLimit.
func NewInbox(limit int) *Inbox {
	if limit <= 0 {
		limit = DefaultInboxLimit
	}
	return &Inbox{
		limit: limit,
		boxes: make(map[string][]models.Notification),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Deliver queues n for n.RecipientID and returns the stored notification.
func (b *Inbox) Deliver(n models.Notification) models.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	box := append(b.boxes[n.RecipientID], n)
	if over := len(box) - b.limit; over > 0 {
		box = slices.Delete(box, 0, over)
	}
	b.boxes[n.RecipientID] = box
	return n
}

// List returns the recipient's notifications, newest first.
func (b *Inbox) List(userID string, unreadOnly bool) []models.Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()

	box := b.boxes[userID]
	out := make([]models.Notification, 0, len(box))
	for i := len(box) - 1; i >= 0; i-- {
		if unreadOnly && box[i].Read {
			continue
		}
		out = append(out, box[i])
	}
	return out
}

// MarkRead marks one notification read and reports whether it was found.
func (b *Inbox) MarkRead(userID, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	box := b.boxes[userID]
	for i := range box {
		if box[i].ID == id {
			box[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead marks every notification of userID read and returns how many changed.
func (b *Inbox) MarkAllRead(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	box := b.boxes[userID]
	for i := range box {
		if !box[i].Read {
			box[i].Read = true
			n++
		}
	}
	return n
}

func (b *Inbox) UnreadCount(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, notification := range b.boxes[userID] {
		if !notification.Read {
			n++
		}
	}
	return n
}

// Forget drops every notification of userID.
func (b *Inbox) Forget(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.boxes, userID)
}
