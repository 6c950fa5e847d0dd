package service

import (
	"context"
	"strings"
	"time"

	"taskhub/internal/api"
	"taskhub/internal/auth"
	"taskhub/internal/models"
	"taskhub/internal/store"
)

// DefaultSessionTTL is the login session lifetime when none is configured.
const DefaultSessionTTL = 24 * time.Hour

// AuthService issues and checks bearer-token sessions.
type AuthService struct {
	base
	sessions   store.SessionStore
	sessionTTL time.Duration
}

func NewAuthService(users store.UserStore, sessions store.SessionStore, opts Options) *AuthService {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{base: newBase(users, nil, opts), sessions: sessions, sessionTTL: ttl}
}

// Login checks credentials and opens a session. Unknown users, inactive
// users, and wrong passwords all fail with the same message.
func (a *AuthService) Login(ctx context.Context, username, password string) (Result[api.LoginResponse], error) {
	normalized, err := auth.NormalizeUsername(username)
	if err != nil || strings.TrimSpace(password) == "" {
		return fail[api.LoginResponse](CodeUnauthorized, MsgInvalidCredentials), nil
	}

	user, err := a.users.FindByUsername(ctx, normalized)
	if err != nil {
		return Result[api.LoginResponse]{}, err
	}
	if user == nil || !user.IsActive || !auth.VerifyPassword(user.PasswordHash, password) {
		a.logger.Info("login failed", "username", normalized)
		return fail[api.LoginResponse](CodeUnauthorized, MsgInvalidCredentials), nil
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		return Result[api.LoginResponse]{}, err
	}
	now := a.now()
	session := models.Session{
		TokenHash: auth.HashToken(token),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(a.sessionTTL),
	}
	if err := a.sessions.Create(ctx, session); err != nil {
		return Result[api.LoginResponse]{}, err
	}

	updated, err := a.users.Modify(ctx, user.ID, 0, func(u *models.User) error {
		u.LastLoginAt = &now
		return nil
	})
	if err != nil {
		return Result[api.LoginResponse]{}, err
	}

	a.logger.Info("login", "user_id", user.ID)
	return ok(api.LoginResponse{Token: token, ExpiresAt: session.ExpiresAt, User: updated.Sanitized()}), nil
}

// Authenticate returns the active user holding token, or nil.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	session, err := a.sessions.FindActive(ctx, auth.HashToken(token))
	if err != nil || session == nil {
		return nil, err
	}
	user, err := a.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}
	return user, nil
}

// Logout revokes the session for token. Unknown tokens are not an error.
func (a *AuthService) Logout(ctx context.Context, token string) (Result[bool], error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return unauthorized[bool](), nil
	}
	revoked, err := a.sessions.Revoke(ctx, auth.HashToken(token))
	if err != nil {
		return Result[bool]{}, err
	}
	return okMessage(revoked, "Logged out"), nil
}
