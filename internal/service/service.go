package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"taskhub/internal/events"
	"taskhub/internal/models"
	"taskhub/internal/store"
)

// Publisher delivers domain events after a change is persisted.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Errors raised inside repository callbacks and mapped to failed results.
var (
	errDenied          = errors.New("permission denied")
	errCommentNotFound = errors.New("comment not found")
	errUserNotFound    = errors.New("user not found")
)

type validationError struct {
	message string
}

func (e validationError) Error() string {
	return e.message
}

func invalidf(message string) error {
	return validationError{message: message}
}

// base holds what every service needs to identify the caller and emit events.
type base struct {
	users  store.UserStore
	bus    Publisher
	logger *slog.Logger
	now    func() time.Time
}

func newBase(users store.UserStore, bus Publisher, opts Options) base {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return base{users: users, bus: bus, logger: logger, now: now}
}

// currentUser resolves the context actor against the user store so that
// deleted or deactivated accounts lose access immediately. The stored role
// wins over the role carried in the context.
func (b *base) currentUser(ctx context.Context) (Actor, *models.User, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return Actor{}, nil, nil
	}
	user, err := b.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return Actor{}, nil, err
	}
	if user == nil || !user.IsActive {
		return Actor{}, nil, nil
	}
	return ActorFor(user), user, nil
}

// emit publishes e. Subscriber failures are logged by the bus and do not
// undo the change that produced the event.
func (b *base) emit(ctx context.Context, e events.Event) {
	if b.bus == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = b.now()
	}
	if err := b.bus.Publish(ctx, e); err != nil {
		b.logger.Debug("event delivered with errors", "event", e.Type, "error", err)
	}
}

// failure maps expected errors to a failed result. handled is false when
// err must be propagated to the caller instead.
func failure[T any](err error, notFound, conflictMsg string) (Result[T], bool) {
	var verr validationError
	switch {
	case errors.Is(err, errDenied), errors.Is(err, store.ErrNotFirstUser):
		return forbidden[T](), true
	case errors.As(err, &verr):
		return invalidArgument[T](verr.message), true
	case errors.Is(err, errCommentNotFound):
		return fail[T](CodeNotFound, MsgCommentNotFound), true
	case errors.Is(err, errUserNotFound):
		return fail[T](CodeNotFound, MsgUserNotFound), true
	case errors.Is(err, store.ErrNotFound):
		return fail[T](CodeNotFound, notFound), true
	case errors.Is(err, store.ErrVersionConflict):
		return fail[T](CodeConflict, conflictMsg), true
	case errors.Is(err, store.ErrUsernameTaken):
		return fail[T](CodeConflict, MsgUsernameTaken), true
	case errors.Is(err, store.ErrEmailTaken):
		return fail[T](CodeConflict, MsgEmailTaken), true
	case errors.Is(err, store.ErrDuplicateID):
		return fail[T](CodeConflict, "ID already exists"), true
	case errors.Is(err, store.ErrInvalid):
		return invalidArgument[T](strings.TrimPrefix(err.Error(), store.ErrInvalid.Error()+": ")), true
	default:
		return Result[T]{}, false
	}
}

// taskFailure maps err for task operations.
func taskFailure[T any](err error) (Result[T], error) {
	if res, handled := failure[T](err, MsgTaskNotFound, MsgTaskConflict); handled {
		return res, nil
	}
	return Result[T]{}, err
}

// userFailure maps err for user operations.
func userFailure[T any](err error) (Result[T], error) {
	if res, handled := failure[T](err, MsgUserNotFound, MsgUserConflict); handled {
		return res, nil
	}
	return Result[T]{}, err
}

// Options configures the services.
type Options struct {
	Logger *slog.Logger
	Now    func() time.Time
	// SessionTTL is the login session lifetime; zero selects DefaultSessionTTL.
	SessionTTL time.Duration
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
