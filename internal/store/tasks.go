package store

import (
	"context"
	"time"

	"taskhub/internal/models"
	"taskhub/internal/storage"
)

// Storage keys for the persisted collections.
const (
	TasksKey    = "tasks"
	UsersKey    = "users"
	SessionsKey = "sessions"
)

// Options configures a repository.
type Options struct {
	// CacheTTL is the findById cache lifetime. Zero selects DefaultCacheTTL;
	// a negative value disables the cache.
	CacheTTL time.Duration
	// IDPrefix is the two-letter task id prefix. Empty selects DefaultTaskPrefix.
	IDPrefix string
	// Now overrides the clock for timestamps.
	Now func() time.Time
}

func (o Options) cacheTTL() time.Duration {
	if o.CacheTTL == 0 {
		return DefaultCacheTTL
	}
	return o.CacheTTL
}

func (o Options) clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return func() time.Time { return time.Now().UTC() }
}

// TaskUpdate lists the task fields an update may change. Nil fields are left as-is.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.Priority
	Category     *models.Category
	AssigneeID   *string
	Tags         *[]string
	DueDate      *time.Time
	ClearDueDate bool
	// ExpectedVersion rejects the update with ErrVersionConflict when non-zero
	// and different from the stored version.
	ExpectedVersion int
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil && u.Priority == nil &&
		u.Category == nil && u.AssigneeID == nil && u.Tags == nil && u.DueDate == nil && !u.ClearDueDate
}

// Apply writes the set fields to task.
func (u TaskUpdate) Apply(task *models.Task, now time.Time) {
	if u.Title != nil {
		task.Title = *u.Title
	}
	if u.Description != nil {
		task.Description = *u.Description
	}
	if u.Status != nil {
		task.SetStatus(*u.Status, now)
	}
	if u.Priority != nil {
		task.Priority = *u.Priority
	}
	if u.Category != nil {
		task.Category = *u.Category
	}
	if u.AssigneeID != nil {
		task.AssigneeID = *u.AssigneeID
	}
	if u.Tags != nil {
		task.Tags = *u.Tags
	}
	if u.ClearDueDate {
		task.DueDate = nil
	} else if u.DueDate != nil {
		due := *u.DueDate
		task.DueDate = &due
	}
}

// TaskRepository persists tasks as a single JSON document.
type TaskRepository struct {
	coll   *collection[models.Task]
	cache  *ttlCache[*models.Task]
	prefix string
	now    func() time.Time
}

// NewTaskRepository builds a repository over st.
func NewTaskRepository(st storage.Storage, opts Options) *TaskRepository {
	prefix := opts.IDPrefix
	if prefix == "" {
		prefix = DefaultTaskPrefix
	}
	return &TaskRepository{
		coll:   newCollection(st, TasksKey, func(t *models.Task) string { return t.ID }),
		cache:  newTTLCache(opts.cacheTTL(), (*models.Task).Clone),
		prefix: prefix,
		now:    opts.clock(),
	}
}

// Create assigns an id when missing, stamps timestamps, and persists task.
// The stored copy is returned.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	item := task.Clone()
	item.ApplyDefaults()
	if err := item.Validate(); err != nil {
		return nil, invalid(err)
	}

	err := r.coll.update(ctx, func(snap *snapshot[models.Task]) (bool, error) {
		if item.ID == "" {
			id, err := GenerateID(r.prefix, snap.has)
			if err != nil {
				return false, err
			}
			item.ID = id
		} else if snap.has(item.ID) {
			return false, ErrDuplicateID
		}
		now := r.now()
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now
		if item.IsCompleted() && item.CompletedAt == nil {
			item.CompletedAt = &now
		}
		item.Version = 1
		snap.add(item)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(item.ID)
	return item.Clone(), nil
}

// FindByID returns the task or nil when no task has id.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	if cached, ok := r.cache.Get(id); ok {
		return cached, nil
	}
	gen := r.cache.Generation()
	snap, err := r.coll.read(ctx)
	if err != nil {
		return nil, err
	}
	task, ok := snap.get(id)
	if !ok {
		return nil, nil
	}
	r.cache.Put(id, task, gen)
	return task.Clone(), nil
}

// Exists reports whether a task with id is stored.
func (r *TaskRepository) Exists(ctx context.Context, id string) (bool, error) {
	task, err := r.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return task != nil, nil
}

// FindAll returns tasks matching filter.
func (r *TaskRepository) FindAll(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	snap, err := r.coll.read(ctx)
	if err != nil {
		return nil, err
	}
	return filter.apply(snap.items), nil
}

// Count returns the number of tasks matching filter, ignoring pagination.
func (r *TaskRepository) Count(ctx context.Context, filter TaskFilter) (int, error) {
	snap, err := r.coll.read(ctx)
	if err != nil {
		return 0, err
	}
	return filter.count(snap.items), nil
}

// Modify applies fn to a copy of the stored task and saves the result.
// fn must not change the id. A non-zero expectedVersion guards against
// concurrent writers.
func (r *TaskRepository) Modify(ctx context.Context, id string, expectedVersion int, fn func(*models.Task) error) (*models.Task, error) {
	var saved *models.Task
	err := r.coll.update(ctx, func(snap *snapshot[models.Task]) (bool, error) {
		current, ok := snap.get(id)
		if !ok {
			return false, ErrNotFound
		}
		next := current.Clone()
		if err := fn(next); err != nil {
			return false, err
		}
		if expectedVersion != 0 && current.Version != expectedVersion {
			return false, ErrVersionConflict
		}
		next.ID = current.ID
		next.CreatedAt = current.CreatedAt
		next.ApplyDefaults()
		if err := next.Validate(); err != nil {
			return false, invalid(err)
		}
		next.UpdatedAt = r.now()
		next.Version = current.Version + 1
		snap.replace(next)
		saved = next
		return true, nil
	})
	// A failed save may still have reached storage.
	r.cache.Invalidate(id)
	if err != nil {
		return nil, err
	}
	return saved.Clone(), nil
}

// Update applies a partial update.
func (r *TaskRepository) Update(ctx context.Context, id string, update TaskUpdate) (*models.Task, error) {
	return r.Modify(ctx, id, update.ExpectedVersion, func(task *models.Task) error {
		update.Apply(task, r.now())
		return nil
	})
}

// Delete removes the task and reports whether it existed. Nothing is
// written when the id is unknown.
func (r *TaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.coll.update(ctx, func(snap *snapshot[models.Task]) (bool, error) {
		removed = snap.remove(id)
		return removed, nil
	})
	if removed || err != nil {
		r.cache.Invalidate(id)
	}
	if err != nil {
		return false, err
	}
	return removed, nil
}

// ClearCache drops every cached lookup.
func (r *TaskRepository) ClearCache() {
	r.cache.Clear()
}
