package service

import (
	"context"
	"log/slog"
	"time"

	"taskhub/internal/collab"
	"taskhub/internal/events"
	"taskhub/internal/storage"
	"taskhub/internal/store"
)

// Config assembles the services over one storage.
type Config struct {
	CacheTTL             time.Duration
	IDPrefix             string
	ActivityLimit        int
	NotificationLimit    int
	DisableNotifications bool
	SessionTTL           time.Duration
	Logger               *slog.Logger
	Now                  func() time.Time
}

// Services is the wired application: repositories, the event bus with its
// subscribers, and the controllers built on them.
type Services struct {
	Tasks  *TaskService
	Users  *UserService
	Auth   *AuthService
	Collab *CollaborationService

	Bus      *events.Bus
	Feed     *collab.Feed
	Inbox    *collab.Inbox
	Notifier *collab.Notifier

	TaskStore    *store.TaskRepository
	UserStore    *store.UserRepository
	SessionStore *store.SessionRepository
}

// New wires every component over st. Subscribers run in the order
// activity, notifications, stats.
func New(st storage.Storage, cfg Config) *Services {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	storeOpts := store.Options{CacheTTL: cfg.CacheTTL, IDPrefix: cfg.IDPrefix, Now: cfg.Now}
	opts := Options{Logger: logger.With("component", "service"), Now: cfg.Now, SessionTTL: cfg.SessionTTL}

	tasks := store.NewTaskRepository(st, storeOpts)
	users := store.NewUserRepository(st, storeOpts)
	sessions := store.NewSessionRepository(st, storeOpts)

	bus := events.NewBus(logger.With("component", "events"))
	feed := collab.NewFeed(cfg.ActivityLimit)
	inbox := collab.NewInbox(cfg.NotificationLimit)
	notifier := collab.NewNotifier(inbox, collab.WatcherMentionResolver{})
	notifier.SetEnabled(!cfg.DisableNotifications)

	bus.Subscribe("activity", collab.NewActivityRecorder(feed))
	bus.Subscribe("notifications", notifier)
	bus.Subscribe("stats", collab.NewStatsRecorder(users))
	bus.Subscribe("inbox-cleanup", events.SubscriberFunc(func(_ context.Context, e events.Event) error {
		inbox.Forget(e.TargetUserID)
		return nil
	}), events.UserDeleted)

	return &Services{
		Tasks:        NewTaskService(tasks, users, bus, opts),
		Users:        NewUserService(users, sessions, bus, opts),
		Auth:         NewAuthService(users, sessions, opts),
		Collab:       NewCollaborationService(tasks, users, feed, inbox, bus, opts),
		Bus:          bus,
		Feed:         feed,
		Inbox:        inbox,
		Notifier:     notifier,
		TaskStore:    tasks,
		UserStore:    users,
		SessionStore: sessions,
	}
}
