package store

import (
	"context"
	"strings"
	"time"

	"taskhub/internal/models"
	"taskhub/internal/storage"
)

// UserUpdate lists the profile fields an update may change.
type UserUpdate struct {
	Username        *string
	Email           *string
	DisplayName     *string
	Role            *models.Role
	IsActive        *bool
	Teams           *[]string
	Skills          *[]models.Skill
	ExpectedVersion int
}

func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.DisplayName == nil && u.Role == nil &&
		u.IsActive == nil && u.Teams == nil && u.Skills == nil
}

// Apply writes the set fields to user.
func (u UserUpdate) Apply(user *models.User) {
	if u.Username != nil {
		user.Username = *u.Username
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*u.DisplayName)
	}
	if u.Role != nil {
		user.Role = *u.Role
	}
	if u.IsActive != nil {
		user.IsActive = *u.IsActive
	}
	if u.Teams != nil {
		user.Teams = *u.Teams
	}
	if u.Skills != nil {
		user.Skills = *u.Skills
	}
}

// UserRepository persists users as a single JSON document. Usernames and
// emails are unique after normalization.
type UserRepository struct {
	coll  *collection[models.User]
	cache *ttlCache[*models.User]
	now   func() time.Time
}

func NewUserRepository(st storage.Storage, opts Options) *UserRepository {
	return &UserRepository{
		coll:  newCollection(st, UsersKey, func(u *models.User) string { return u.ID }),
		cache: newTTLCache(opts.cacheTTL(), (*models.User).Clone),
		now:   opts.clock(),
	}
}

func normalizeUser(user *models.User) {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	user.Email = models.NormalizeEmail(user.Email)
	user.Teams = models.NormalizeTeams(user.Teams)
	if user.Role == "" {
		user.Role = models.DefaultRole
	}
}

// checkUnique reports a conflict with any user other than user itself.
func checkUnique(snap *snapshot[models.User], user *models.User) error {
	for _, other := range snap.items {
		if other.ID == user.ID {
			continue
		}
		if other.Username == user.Username {
			return ErrUsernameTaken
		}
		if other.Email == user.Email {
			return ErrEmailTaken
		}
	}
	return nil
}

// Create persists a new user. The collection is unchanged when the
// username or email is already taken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	return r.create(ctx, user, false)
}

// CreateFirst persists user only when the collection is empty, deciding
// under the collection lock. It returns ErrNotFirstUser otherwise.
func (r *UserRepository) CreateFirst(ctx context.Context, user *models.User) (*models.User, error) {
	return r.create(ctx, user, true)
}

func (r *UserRepository) create(ctx context.Context, user *models.User, onlyIfEmpty bool) (*models.User, error) {
	item := user.Clone()
	normalizeUser(item)
	if err := item.Validate(); err != nil {
		return nil, invalid(err)
	}

	err := r.coll.update(ctx, func(snap *snapshot[models.User]) (bool, error) {
		if onlyIfEmpty && len(snap.items) > 0 {
			return false, ErrNotFirstUser
		}
		if item.ID == "" {
			id, err := GenerateID(userPrefix, snap.has)
			if err != nil {
				return false, err
			}
			item.ID = id
		} else if snap.has(item.ID) {
			return false, ErrDuplicateID
		}
		if err := checkUnique(snap, item); err != nil {
			return false, err
		}
		now := r.now()
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now
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

// FindByID returns the user or nil when no user has id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if cached, ok := r.cache.Get(id); ok {
		return cached, nil
	}
	gen := r.cache.Generation()
	snap, err := r.coll.read(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := snap.get(id)
	if !ok {
		return nil, nil
	}
	r.cache.Put(id, user, gen)
	return user.Clone(), nil
}

// FindByUsername matches case-insensitively.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	return r.findFirst(ctx, func(u *models.User) bool { return u.Username == username })
}

// FindByEmail matches after email normalization.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	return r.findFirst(ctx, func(u *models.User) bool { return u.Email == email })
}

func (r *UserRepository) findFirst(ctx context.Context, match func(*models.User) bool) (*models.User, error) {
	snap, err := r.coll.read(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range snap.items {
		if match(user) {
			return user.Clone(), nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindAll(ctx context.Context, filter UserFilter) ([]models.User, error) {
	snap, err := r.coll.read(ctx)
	if err != nil {
		return nil, err
	}
	return filter.apply(snap.items), nil
}

func (r *UserRepository) Count(ctx context.Context, filter UserFilter) (int, error) {
	snap, err := r.coll.read(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, user := range snap.items {
		if filter.matches(user) {
			n++
		}
	}
	return n, nil
}

// Modify applies fn to a copy of the stored user and saves the result,
// enforcing uniqueness again.
func (r *UserRepository) Modify(ctx context.Context, id string, expectedVersion int, fn func(*models.User) error) (*models.User, error) {
	var saved *models.User
	err := r.coll.update(ctx, func(snap *snapshot[models.User]) (bool, error) {
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
		normalizeUser(next)
		if err := next.Validate(); err != nil {
			return false, invalid(err)
		}
		if err := checkUnique(snap, next); err != nil {
			return false, err
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

func (r *UserRepository) Update(ctx context.Context, id string, update UserUpdate) (*models.User, error) {
	return r.Modify(ctx, id, update.ExpectedVersion, func(user *models.User) error {
		update.Apply(user)
		return nil
	})
}

// Delete removes the user and reports whether it existed.
func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.coll.update(ctx, func(snap *snapshot[models.User]) (bool, error) {
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

func (r *UserRepository) ClearCache() {
	r.cache.Clear()
}
