package store

import (
	"context"
	"fmt"
	"time"

	"taskhub/internal/models"
	"taskhub/internal/storage"
)

// SessionRepository persists login sessions keyed by token hash.
type SessionRepository struct {
	coll *collection[models.Session]
	now  func() time.Time
}

func NewSessionRepository(st storage.Storage, opts Options) *SessionRepository {
	return &SessionRepository{
		coll: newCollection(st, SessionsKey, func(s *models.Session) string { return s.TokenHash }),
		now:  opts.clock(),
	}
}

// Create stores a session. Expired sessions are purged in the same write.
func (r *SessionRepository) Create(ctx context.Context, session models.Session) error {
	if session.TokenHash == "" || session.UserID == "" {
		return invalid(fmt.Errorf("session requires token hash and user id"))
	}
	return r.coll.update(ctx, func(snap *snapshot[models.Session]) (bool, error) {
		if snap.has(session.TokenHash) {
			return false, ErrDuplicateID
		}
		purgeExpired(snap, r.now())
		item := session
		snap.add(&item)
		return true, nil
	})
}

// FindActive returns the session for tokenHash when it is unexpired and
// not revoked, otherwise nil.
func (r *SessionRepository) FindActive(ctx context.Context, tokenHash string) (*models.Session, error) {
	snap, err := r.coll.read(ctx)
	if err != nil {
		return nil, err
	}
	session, ok := snap.get(tokenHash)
	if !ok || !session.Active(r.now()) {
		return nil, nil
	}
	out := *session
	return &out, nil
}

// Revoke marks one session revoked and reports whether it was active.
func (r *SessionRepository) Revoke(ctx context.Context, tokenHash string) (bool, error) {
	var revoked bool
	err := r.coll.update(ctx, func(snap *snapshot[models.Session]) (bool, error) {
		session, ok := snap.get(tokenHash)
		now := r.now()
		if !ok || !session.Active(now) {
			return false, nil
		}
		session.RevokedAt = &now
		revoked = true
		return true, nil
	})
	return revoked, err
}

// RevokeUser revokes every active session of userID and returns the count.
func (r *SessionRepository) RevokeUser(ctx context.Context, userID string) (int, error) {
	count := 0
	err := r.coll.update(ctx, func(snap *snapshot[models.Session]) (bool, error) {
		now := r.now()
		for _, session := range snap.items {
			if session.UserID == userID && session.Active(now) {
				revokedAt := now
				session.RevokedAt = &revokedAt
				count++
			}
		}
		return count > 0, nil
	})
	return count, err
}

// PurgeExpired drops sessions that can no longer authenticate.
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int, error) {
	var purged int
	err := r.coll.update(ctx, func(snap *snapshot[models.Session]) (bool, error) {
		purged = purgeExpired(snap, r.now())
		return purged > 0, nil
	})
	return purged, err
}

func purgeExpired(snap *snapshot[models.Session], now time.Time) int {
	kept := snap.items[:0]
	for _, session := range snap.items {
		if session.Active(now) {
			kept = append(kept, session)
		}
	}
	purged := len(snap.items) - len(kept)
	snap.items = kept
	snap.reindex()
	return purged
}
