package store

import (
	"context"

	"taskhub/internal/models"
)

// TaskStore is the task persistence contract used by services.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	FindByID(ctx context.Context, id string) (*models.Task, error)
	Exists(ctx context.Context, id string) (bool, error)
	FindAll(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int, error)
	Modify(ctx context.Context, id string, expectedVersion int, fn func(*models.Task) error) (*models.Task, error)
	Update(ctx context.Context, id string, update TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// UserStore is the user persistence contract used by services.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	CreateFirst(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]models.User, error)
	Count(ctx context.Context, filter UserFilter) (int, error)
	Modify(ctx context.Context, id string, expectedVersion int, fn func(*models.User) error) (*models.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	FindActive(ctx context.Context, tokenHash string) (*models.Session, error)
	Revoke(ctx context.Context, tokenHash string) (bool, error)
	RevokeUser(ctx context.Context, userID string) (int, error)
	PurgeExpired(ctx context.Context) (int, error)
}

var (
	_ TaskStore    = (*TaskRepository)(nil)
	_ UserStore    = (*UserRepository)(nil)
	_ SessionStore = (*SessionRepository)(nil)
)
