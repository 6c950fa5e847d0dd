package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskhub/internal/models"
	"taskhub/internal/storage"
)

func newTestUserRepo(t *testing.T) (*UserRepository, *countingStorage) {
	t.Helper()
	st := &countingStorage{Storage: storage.NewMemoryStorage()}
	return NewUserRepository(st, Options{}), st
}

func TestUserRepositoryUniqueness(t *testing.T) {
	repo, st := newTestUserRepo(t)
	ctx := context.Background()

	alice, err := repo.Create(ctx, &models.User{Username: "Alice", Email: "Alice@Example.com", IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if alice.Username != "alice" || alice.Email != "alice@example.com" || alice.Role != models.RoleMember {
		t.Fatalf("user not normalized: %+v", alice)
	}
	if alice.ID[:3] != "us-" {
		t.Fatalf("unexpected id %q", alice.ID)
	}

	_, savesBefore := st.counts()

	_, err = repo.Create(ctx, &models.User{Username: "ALICE", Email: "other@example.com"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	_, err = repo.Create(ctx, &models.User{Username: "alice2", Email: " alice@example.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, saves := st.counts(); saves != savesBefore {
		t.Fatalf("expected collection unchanged, saves %d -> %d", savesBefore, saves)
	}
	count, _ := repo.Count(ctx, UserFilter{})
	if count != 1 {
		t.Fatalf("expected one user, got %d", count)
	}
}

func TestUserRepositoryModifyRunsCallbackBeforeVersionCheck(t *testing.T) {
	repo, _ := newTestUserRepo(t)
	ctx := context.Background()
	denied := errors.New("denied")

	user, err := repo.Create(ctx, &models.User{Username: "carol", Email: "carol@example.com", IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = repo.Modify(ctx, user.ID, user.Version+3, func(*models.User) error { return denied })
	if !errors.Is(err, denied) {
		t.Fatalf("expected callback error to win over stale version, got %v", err)
	}
	_, err = repo.Modify(ctx, user.ID, user.Version+3, func(*models.User) error { return nil })
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestUserRepositoryLookups(t *testing.T) {
	repo, _ := newTestUserRepo(t)
	ctx := context.Background()

	bob, _ := repo.Create(ctx, &models.User{Username: "bob", Email: "bob@example.com", IsActive: true, Teams: []string{"core"},
		Skills: []models.Skill{{Name: "Go", Level: 4}}})
	repo.Create(ctx, &models.User{Username: "carol", Email: "carol@example.com", Role: models.RoleAdmin})

	byName, err := repo.FindByUsername(ctx, " BOB ")
	if err != nil || byName == nil || byName.ID != bob.ID {
		t.Fatalf("find by username: %+v, %v", byName, err)
	}
	byEmail, err := repo.FindByEmail(ctx, "BOB@example.com")
	if err != nil || byEmail == nil || byEmail.ID != bob.ID {
		t.Fatalf("find by email: %+v, %v", byEmail, err)
	}
	none, err := repo.FindByUsername(ctx, "nobody")
	if err != nil || none != nil {
		t.Fatalf("expected nil, got %+v, %v", none, err)
	}

	active := true
	tests := []struct {
		name   string
		filter UserFilter
		want   int
	}{
		{name: "all", filter: UserFilter{}, want: 2},
		{name: "admins", filter: UserFilter{Role: models.RoleAdmin}, want: 1},
		{name: "active", filter: UserFilter{Active: &active}, want: 1},
		{name: "team", filter: UserFilter{Team: "core"}, want: 1},
		{name: "skill", filter: UserFilter{Skill: "go"}, want: 1},
		{name: "query", filter: UserFilter{Query: "car"}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := repo.FindAll(ctx, tt.filter)
			if err != nil {
				t.Fatalf("find all: %v", err)
			}
			if len(users) != tt.want {
				t.Fatalf("got %d users, want %d", len(users), tt.want)
			}
		})
	}
}

func TestUserRepositoryUpdateKeepsUniqueness(t *testing.T) {
	repo, _ := newTestUserRepo(t)
	ctx := context.Background()

	repo.Create(ctx, &models.User{Username: "dan", Email: "dan@example.com"})
	erin, _ := repo.Create(ctx, &models.User{Username: "erin", Email: "erin@example.com"})

	taken := "dan"
	if _, err := repo.Update(ctx, erin.ID, UserUpdate{Username: &taken}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	display := "Erin E."
	updated, err := repo.Update(ctx, erin.ID, UserUpdate{DisplayName: &display})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DisplayName != "Erin E." || updated.Version != 2 {
		t.Fatalf("unexpected user: %+v", updated)
	}

	removed, err := repo.Delete(ctx, erin.ID)
	if err != nil || !removed {
		t.Fatalf("delete: %v, %v", removed, err)
	}
	removed, err = repo.Delete(ctx, erin.ID)
	if err != nil || removed {
		t.Fatalf("second delete: %v, %v", removed, err)
	}
}

func TestSessionRepository(t *testing.T) {
	clock := newFakeClock()
	repo := NewSessionRepository(storage.NewMemoryStorage(), Options{Now: clock.Now})
	ctx := context.Background()

	session := models.Session{TokenHash: "h1", UserID: "us-0001", CreatedAt: clock.Now(), ExpiresAt: clock.Now().Add(time.Hour)}
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, session); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	found, err := repo.FindActive(ctx, "h1")
	if err != nil || found == nil || found.UserID != "us-0001" {
		t.Fatalf("find active: %+v, %v", found, err)
	}

	revoked, err := repo.Revoke(ctx, "h1")
	if err != nil || !revoked {
		t.Fatalf("revoke: %v, %v", revoked, err)
	}
	if found, _ := repo.FindActive(ctx, "h1"); found != nil {
		t.Fatal("expected revoked session to be inactive")
	}

	repo.Create(ctx, models.Session{TokenHash: "h2", UserID: "us-0002", ExpiresAt: clock.Now().Add(time.Minute)})
	repo.Create(ctx, models.Session{TokenHash: "h3", UserID: "us-0002", ExpiresAt: clock.Now().Add(time.Hour)})

	n, err := repo.RevokeUser(ctx, "us-0002")
	if err != nil || n != 2 {
		t.Fatalf("revoke user: %d, %v", n, err)
	}

	clock.Advance(2 * time.Hour)
	purged, err := repo.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	// h1 was dropped when h2 was created.
	if purged != 2 {
		t.Fatalf("expected 2 purged, got %d", purged)
	}
}
