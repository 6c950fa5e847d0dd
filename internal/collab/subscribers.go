package collab

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"taskhub/internal/events"
	"taskhub/internal/models"
	"taskhub/internal/store"
)

// Notification types.
const (
	NotifyMention  = "mention"
	NotifyComment  = "comment"
	NotifyAssigned = "assigned"
	NotifyShared   = "shared"
	NotifyStatus   = "status"
)

// ActivityRecorder appends one feed entry per event.
type ActivityRecorder struct {
	feed *Feed
}

func NewActivityRecorder(feed *Feed) *ActivityRecorder {
	return &ActivityRecorder{feed: feed}
}

func (r *ActivityRecorder) Handle(ctx context.Context, e events.Event) error {
	r.feed.Record(activityFor(e))
	return nil
}

func activityFor(e events.Event) models.Activity {
	a := models.Activity{
		Type:        string(e.Type),
		ActorID:     e.ActorID,
		TaskID:      e.TaskID,
		Description: describe(e),
		Mentions:    slices.Clone(e.Mentions),
		CreatedAt:   e.OccurredAt,
	}
	if e.Comment != nil {
		a.CommentID = e.Comment.ID
	}
	if e.Task != nil && e.Task.AssigneeID != "" {
		a.Assignees = []string{e.Task.AssigneeID}
	}
	if e.Type == events.TaskShared || e.Type == events.TaskUnshared || e.Type == events.TaskAssigned {
		if e.TargetUserID != "" && !slices.Contains(a.Assignees, e.TargetUserID) {
			a.Assignees = append(a.Assignees, e.TargetUserID)
		}
	}
	return a
}

func describe(e events.Event) string {
	title := e.TaskTitle()
	switch e.Type {
	case events.TaskCreated:
		return fmt.Sprintf("created task %q", title)
	case events.TaskUpdated:
		return fmt.Sprintf("updated task %q", title)
	case events.TaskDeleted:
		return fmt.Sprintf("deleted task %q", title)
	case events.TaskStatusChanged:
		if e.Task != nil {
			return fmt.Sprintf("marked task %q %s", title, e.Task.Status)
		}
		return fmt.Sprintf("changed status of task %q", title)
	case events.TaskAssigned:
		if e.TargetUserID == "" {
			return fmt.Sprintf("unassigned task %q", title)
		}
		return fmt.Sprintf("assigned task %q to %s", title, e.TargetUserID)
	case events.TaskShared:
		return fmt.Sprintf("shared task %q with %s", title, e.TargetUserID)
	case events.TaskUnshared:
		return fmt.Sprintf("stopped sharing task %q with %s", title, e.TargetUserID)
	case events.TaskWatched:
		return fmt.Sprintf("started watching task %q", title)
	case events.TaskUnwatched:
		return fmt.Sprintf("stopped watching task %q", title)
	case events.CommentAdded:
		return fmt.Sprintf("commented on task %q", title)
	case events.CommentUpdated:
		return fmt.Sprintf("edited a comment on task %q", title)
	case events.CommentDeleted:
		return fmt.Sprintf("deleted a comment on task %q", title)
	case events.CommentResolved:
		return fmt.Sprintf("resolved a comment on task %q", title)
	case events.UserCreated, events.UserUpdated, events.UserDeleted:
		if e.User != nil {
			return fmt.Sprintf("%s user %s", verb(e.Type), e.User.Username)
		}
		return fmt.Sprintf("%s user %s", verb(e.Type), e.TargetUserID)
	default:
		return string(e.Type)
	}
}

func verb(t events.Type) string {
	switch t {
	case events.UserCreated:
		return "created"
	case events.UserDeleted:
		return "deleted"
	default:
		return "updated"
	}
}

// Notifier fans events out to recipient inboxes. It can be switched off at runtime.
type Notifier struct {
	inbox    *Inbox
	resolver RecipientResolver
	enabled  atomic.Bool
}

// NewNotifier returns an enabled notifier. A nil resolver selects
// WatcherMentionResolver.
func NewNotifier(inbox *Inbox, resolver RecipientResolver) *Notifier {
	if resolver == nil {
		resolver = WatcherMentionResolver{}
	}
	n := &Notifier{inbox: inbox, resolver: resolver}
	n.enabled.Store(true)
	return n
}

func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

func (n *Notifier) Enabled() bool {
	return n.enabled.Load()
}

func (n *Notifier) Handle(ctx context.Context, e events.Event) error {
	if !n.Enabled() {
		return nil
	}
	for _, notification := range n.notificationsFor(e) {
		n.inbox.Deliver(notification)
	}
	return nil
}

func (n *Notifier) notificationsFor(e events.Event) []models.Notification {
	title := e.TaskTitle()
	base := models.Notification{ActorID: e.ActorID, TaskID: e.TaskID, CreatedAt: e.OccurredAt}

	single := func(recipient, kind, message string) []models.Notification {
		if recipient == "" || recipient == e.ActorID {
			return nil
		}
		out := base
		out.RecipientID, out.Type, out.Message = recipient, kind, message
		return []models.Notification{out}
	}

	switch e.Type {
	case events.CommentAdded:
		if e.Comment == nil {
			return nil
		}
		var out []models.Notification
		for _, recipient := range n.resolver.Recipients(e.Task, e.Comment) {
			item := base
			item.RecipientID = recipient
			item.CommentID = e.Comment.ID
			if slices.Contains(e.Comment.MentionedUserIDs, recipient) {
				item.Type = NotifyMention
				item.Message = fmt.Sprintf("You were mentioned in a comment on %q", title)
			} else {
				item.Type = NotifyComment
				item.Message = fmt.Sprintf("New comment on %q", title)
			}
			out = append(out, item)
		}
		return out
	case events.TaskAssigned:
		return single(e.TargetUserID, NotifyAssigned, fmt.Sprintf("You were assigned %q", title))
	case events.TaskShared:
		return single(e.TargetUserID, NotifyShared, fmt.Sprintf("%q was shared with you", title))
	case events.TaskStatusChanged:
		if e.Task == nil {
			return nil
		}
		var out []models.Notification
		for _, watcher := range e.Task.Watchers {
			out = append(out, single(watcher, NotifyStatus, fmt.Sprintf("%q is now %s", title, e.Task.Status))...)
		}
		return out
	default:
		return nil
	}
}

// StatsModifier updates a stored user in place.
type StatsModifier interface {
	Modify(ctx context.Context, id string, expectedVersion int, fn func(*models.User) error) (*models.User, error)
}

// StatsRecorder maintains users' collaboration counters.
type StatsRecorder struct {
	users StatsModifier
}

func NewStatsRecorder(users StatsModifier) *StatsRecorder {
	return &StatsRecorder{users: users}
}

func (r *StatsRecorder) Handle(ctx context.Context, e events.Event) error {
	var bump func(*models.CollaborationStats)
	switch e.Type {
	case events.TaskCreated:
		bump = func(s *models.CollaborationStats) { s.TasksCreated++ }
	case events.TaskStatusChanged:
		if e.Task == nil || !e.Task.IsCompleted() {
			return nil
		}
		bump = func(s *models.CollaborationStats) { s.TasksCompleted++ }
	case events.CommentAdded:
		bump = func(s *models.CollaborationStats) { s.CommentsPosted++ }
	case events.TaskShared:
		bump = func(s *models.CollaborationStats) { s.TasksShared++ }
	default:
		return nil
	}
	if e.ActorID == "" {
		return nil
	}

	_, err := r.users.Modify(ctx, e.ActorID, 0, func(u *models.User) error {
		bump(&u.CollaborationStats)
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

