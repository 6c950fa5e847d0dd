package service

import (
	"context"
	"strings"

	"taskhub/internal/api"
	"taskhub/internal/auth"
	"taskhub/internal/events"
	"taskhub/internal/models"
	"taskhub/internal/store"
)

// UserService manages accounts. Returned users never carry password hashes.
type UserService struct {
	base
	sessions store.SessionStore
}

func NewUserService(users store.UserStore, sessions store.SessionStore, bus Publisher, opts Options) *UserService {
	return &UserService{base: newBase(users, bus, opts), sessions: sessions}
}

// CreateUser registers an account. Anyone may register a member; the admin
// role is granted only by an admin or to the very first account.
func (s *UserService) CreateUser(ctx context.Context, req api.UserCreateRequest) (Result[*models.User], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.User]{}, err
	}

	username, err := auth.NormalizeUsername(req.Username)
	if err != nil {
		return invalidArgument[*models.User](err.Error()), nil
	}
	role := models.DefaultRole
	if strings.TrimSpace(req.Role) != "" {
		if role, err = models.ParseRole(req.Role); err != nil {
			return invalidArgument[*models.User](err.Error()), nil
		}
	}

	user := &models.User{
		Username:    username,
		Email:       req.Email,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Role:        role,
		IsActive:    true,
		Teams:       req.Teams,
		Skills:      req.Skills,
	}
	if req.Password != "" {
		if user.PasswordHash, err = auth.HashPassword(req.Password); err != nil {
			return invalidArgument[*models.User](err.Error()), nil
		}
	}

	create := s.users.Create
	if role == models.RoleAdmin && !actor.IsAdmin() {
		// Without an admin caller the admin role is only granted while no
		// account exists; the store decides that under its lock.
		create = s.users.CreateFirst
	}
	created, err := create(ctx, user)
	if err != nil {
		return userFailure[*models.User](err)
	}

	actorID := actor.UserID
	if actorID == "" {
		actorID = created.ID
	}
	s.logger.Info("user created", "user_id", created.ID, "role", created.Role)
	s.emit(ctx, events.Event{Type: events.UserCreated, ActorID: actorID, TargetUserID: created.ID, User: created.Sanitized()})
	return okMessage(created.Sanitized(), "User created"), nil
}

// GetUser returns any user to an authenticated caller.
func (s *UserService) GetUser(ctx context.Context, id string) (Result[*models.User], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.User]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.User](), nil
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return Result[*models.User]{}, err
	}
	if user == nil {
		return fail[*models.User](CodeNotFound, MsgUserNotFound), nil
	}
	return ok(user.Sanitized()), nil
}

// GetUsers lists users matching query.
func (s *UserService) GetUsers(ctx context.Context, query api.UserQuery) (Result[[]models.User], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[[]models.User]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[[]models.User](), nil
	}

	filter := store.UserFilter{
		Active: query.Active,
		Team:   strings.TrimSpace(query.Team),
		Skill:  strings.TrimSpace(query.Skill),
		Query:  query.Search,
		Limit:  query.Limit,
		Offset: query.Offset,
	}
	if query.Role != "" {
		if filter.Role, err = models.ParseRole(query.Role); err != nil {
			return invalidArgument[[]models.User](err.Error()), nil
		}
	}
	users, err := s.users.FindAll(ctx, filter)
	if err != nil {
		return Result[[]models.User]{}, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return ok(users), nil
}

// UpdateUser changes a profile. Users edit themselves; only admins change
// roles or activation.
func (s *UserService) UpdateUser(ctx context.Context, id string, req api.UserUpdateRequest) (Result[*models.User], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.User]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.User](), nil
	}
	if !canManageUser(actor, id) {
		return forbidden[*models.User](), nil
	}
	if (req.Role != nil || req.IsActive != nil) && !actor.IsAdmin() {
		return forbidden[*models.User](), nil
	}

	update := store.UserUpdate{
		Email:       trimmedPtr(req.Email),
		DisplayName: req.DisplayName,
		IsActive:    req.IsActive,
		Teams:       req.Teams,
		Skills:      req.Skills,
	}
	if req.Role != nil {
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			return invalidArgument[*models.User](err.Error()), nil
		}
		update.Role = &role
	}
	if update.Empty() {
		return invalidArgument[*models.User]("no fields to update"), nil
	}

	updated, err := s.users.Modify(ctx, id, req.ExpectedVersion, func(user *models.User) error {
		update.Apply(user)
		return nil
	})
	if err != nil {
		return userFailure[*models.User](err)
	}

	if req.IsActive != nil && !*req.IsActive && s.sessions != nil {
		if _, err := s.sessions.RevokeUser(ctx, id); err != nil {
			return Result[*models.User]{}, err
		}
	}
	s.emit(ctx, events.Event{Type: events.UserUpdated, ActorID: actor.UserID, TargetUserID: id, User: updated.Sanitized()})
	return okMessage(updated.Sanitized(), "User updated"), nil
}

// DeleteUser removes an account and revokes its sessions. Tasks owned by
// the user are left in place.
func (s *UserService) DeleteUser(ctx context.Context, id string) (Result[bool], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[bool]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[bool](), nil
	}
	if !canManageUser(actor, id) {
		return forbidden[bool](), nil
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return Result[bool]{}, err
	}
	removed, err := s.users.Delete(ctx, id)
	if err != nil {
		return Result[bool]{}, err
	}
	if !removed {
		return fail[bool](CodeNotFound, MsgUserNotFound), nil
	}
	if s.sessions != nil {
		if _, err := s.sessions.RevokeUser(ctx, id); err != nil {
			return Result[bool]{}, err
		}
	}

	s.logger.Info("user deleted", "user_id", id, "actor_id", actor.UserID)
	s.emit(ctx, events.Event{Type: events.UserDeleted, ActorID: actor.UserID, TargetUserID: id, User: user.Sanitized()})
	return okMessage(true, "User deleted"), nil
}

// SetPassword replaces a password. Users changing their own password must
// confirm the current one when they have it; admins may reset anyone's.
func (s *UserService) SetPassword(ctx context.Context, id string, req api.PasswordRequest) (Result[bool], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[bool]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[bool](), nil
	}
	if !canManageUser(actor, id) {
		return forbidden[bool](), nil
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return invalidArgument[bool](err.Error()), nil
	}
	_, err = s.users.Modify(ctx, id, 0, func(user *models.User) error {
		if actor.UserID == id && user.PasswordHash != "" && !auth.VerifyPassword(user.PasswordHash, req.CurrentPassword) {
			return invalidf("current password is incorrect")
		}
		user.PasswordHash = hash
		return nil
	})
	if err != nil {
		return userFailure[bool](err)
	}
	return okMessage(true, "Password updated"), nil
}

// CurrentUser returns the caller's own account.
func (s *UserService) CurrentUser(ctx context.Context) (Result[*models.User], error) {
	actor, user, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.User]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.User](), nil
	}
	return ok(user.Sanitized()), nil
}
