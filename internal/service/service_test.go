package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"taskhub/internal/api"
	"taskhub/internal/auth"
	"taskhub/internal/collab"
	"taskhub/internal/models"
	"taskhub/internal/storage"
)

type fixture struct {
	svc *Services
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.svc = New(storage.NewMemoryStorage(), Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    func() time.Time { return f.now },
	})
	return f
}

// user stores an account directly and returns a context acting as it.
func (f *fixture) user(t *testing.T, username string, role models.Role) (*models.User, context.Context) {
	t.Helper()
	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user, err := f.svc.UserStore.Create(context.Background(), &models.User{
		Username:     username,
		Email:        username + "@example.com",
		Role:         role,
		IsActive:     true,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user, WithActor(context.Background(), ActorFor(user))
}

func mustOK[T any](t *testing.T, res Result[T], err error) T {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got %s: %s", res.Code, res.Error)
	}
	return res.Data
}

// outcome holds a service call's two return values so a call can be
// asserted inline: check(svc.Op(...)).ok(t).
type outcome[T any] struct {
	res Result[T]
	err error
}

func check[T any](res Result[T], err error) outcome[T] {
	return outcome[T]{res: res, err: err}
}

func (o outcome[T]) ok(t *testing.T) T {
	t.Helper()
	return mustOK(t, o.res, o.err)
}

func expectFailure[T any](t *testing.T, res Result[T], err error, code, message string) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Fatalf("expected %s failure, got success", code)
	}
	if res.Code != code || (message != "" && res.Error != message) {
		t.Fatalf("expected %s %q, got %s %q", code, message, res.Code, res.Error)
	}
}

func strPtr(s string) *string { return &s }

func TestCreateListToggleScenario(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.user(t, "ann", models.RoleMember)

	task := check(f.svc.Tasks.CreateTask(ctx, api.TaskCreateRequest{Title: "Write report", Priority: strPtr("high")})).ok(t)
	if task.Status != models.StatusPending || task.Priority != models.PriorityHigh || task.Category != models.CategoryGeneral {
		t.Fatalf("unexpected defaults: %+v", task)
	}

	list := check(f.svc.Tasks.GetTasks(ctx, api.TaskQuery{})).ok(t)
	if len(list) != 1 || list[0].ID != task.ID {
		t.Fatalf("expected created task in list, got %+v", list)
	}

	toggled := check(f.svc.Tasks.ToggleTaskStatus(ctx, task.ID)).ok(t)
	if toggled.Status != models.StatusCompleted || toggled.CompletedAt == nil {
		t.Fatalf("expected completed, got %+v", toggled)
	}
	restored := check(f.svc.Tasks.ToggleTaskStatus(ctx, task.ID)).ok(t)
	if restored.Status != models.StatusPending || restored.CompletedAt != nil {
		t.Fatalf("expected pending after second toggle, got %+v", restored)
	}
}

func TestToggleRestoresInProgress(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.user(t, "ann", models.RoleMember)
	task := check(f.svc.Tasks.CreateTask(ctx, api.TaskCreateRequest{Title: "Build", Status: strPtr("in-progress")})).ok(t)

	check(f.svc.Tasks.ToggleTaskStatus(ctx, task.ID)).ok(t)
	restored := check(f.svc.Tasks.ToggleTaskStatus(ctx, task.ID)).ok(t)
	if restored.Status != models.StatusInProgress {
		t.Fatalf("expected in-progress, got %s", restored.Status)
	}
}

func TestShareUnshareScenario(t *testing.T) {
	f := newFixture(t)
	_, ownerCtx := f.user(t, "ann", models.RoleMember)
	bob, bobCtx := f.user(t, "bob", models.RoleMember)

	task := check(f.svc.Tasks.CreateTask(ownerCtx, api.TaskCreateRequest{Title: "Plan"})).ok(t)
	res, err := f.svc.Tasks.GetTask(bobCtx, task.ID)
	expectFailure(t, res, err, CodeForbidden, MsgPermissionDenied)

	check(f.svc.Tasks.ShareTask(ownerCtx, task.ID, bob.ID, "view")).ok(t)
	got := check(f.svc.Tasks.GetTask(bobCtx, task.ID)).ok(t)
	if got.ID != task.ID {
		t.Fatalf("expected shared task, got %+v", got)
	}

	// view access does not allow modification
	upd, err := f.svc.Tasks.UpdateTask(bobCtx, task.ID, api.TaskUpdateRequest{Title: strPtr("Mine now")})
	expectFailure(t, upd, err, CodeForbidden, MsgPermissionDenied)

	check(f.svc.Tasks.UnshareTask(ownerCtx, task.ID, bob.ID)).ok(t)
	res, err = f.svc.Tasks.GetTask(bobCtx, task.ID)
	expectFailure(t, res, err, CodeForbidden, MsgPermissionDenied)

	again, err := f.svc.Tasks.UnshareTask(ownerCtx, task.ID, bob.ID)
	expectFailure(t, again, err, CodeInvalidArgument, "task is not shared with this user")
}

func TestEditShareAllowsUpdate(t *testing.T) {
	f := newFixture(t)
	_, ownerCtx := f.user(t, "ann", models.RoleMember)
	bob, bobCtx := f.user(t, "bob", models.RoleMember)

	task := check(f.svc.Tasks.CreateTask(ownerCtx, api.TaskCreateRequest{Title: "Plan"})).ok(t)
	check(f.svc.Tasks.ShareTask(ownerCtx, task.ID, bob.ID, "edit")).ok(t)

	updated := check(f.svc.Tasks.UpdateTask(bobCtx, task.ID, api.TaskUpdateRequest{Title: strPtr("Plan v2")})).ok(t)
	if updated.Title != "Plan v2" {
		t.Fatalf("expected title update, got %q", updated.Title)
	}
	del, err := f.svc.Tasks.DeleteTask(bobCtx, task.ID)
	expectFailure(t, del, err, CodeForbidden, MsgPermissionDenied)
	share, err := f.svc.Tasks.ShareTask(bobCtx, task.ID, bob.ID, "view")
	expectFailure(t, share, err, CodeForbidden, MsgPermissionDenied)
}

func TestPermissionPolicy(t *testing.T) {
	f := newFixture(t)
	_, ownerCtx := f.user(t, "owner", models.RoleMember)
	assignee, assigneeCtx := f.user(t, "assignee", models.RoleMember)
	_, strangerCtx := f.user(t, "stranger", models.RoleMember)
	_, adminCtx := f.user(t, "admin", models.RoleAdmin)

	task := check(f.svc.Tasks.CreateTask(ownerCtx, api.TaskCreateRequest{Title: "Policy", AssigneeID: &assignee.ID})).ok(t)

	tests := []struct {
		name    string
		ctx     context.Context
		allowed bool
	}{
		{name: "owner", ctx: ownerCtx, allowed: true},
		{name: "assignee", ctx: assigneeCtx, allowed: true},
		{name: "admin", ctx: adminCtx, allowed: true},
		{name: "stranger", ctx: strangerCtx, allowed: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			get, err := f.svc.Tasks.GetTask(tc.ctx, task.ID)
			upd, uerr := f.svc.Tasks.UpdateTask(tc.ctx, task.ID, api.TaskUpdateRequest{Description: strPtr("by " + tc.name)})
			if tc.allowed {
				mustOK(t, get, err)
				mustOK(t, upd, uerr)
				return
			}
			expectFailure(t, get, err, CodeForbidden, MsgPermissionDenied)
			expectFailure(t, upd, uerr, CodeForbidden, MsgPermissionDenied)
			// a stale version must not tell a stranger the task changed
			stale, serr := f.svc.Tasks.UpdateTask(tc.ctx, task.ID, api.TaskUpdateRequest{Title: strPtr("x"), ExpectedVersion: task.Version + 9})
			expectFailure(t, stale, serr, CodeForbidden, MsgPermissionDenied)
			del, derr := f.svc.Tasks.DeleteTask(tc.ctx, task.ID)
			expectFailure(t, del, derr, CodeForbidden, MsgPermissionDenied)
		})
	}

	// the assignee may delete
	check(f.svc.Tasks.DeleteTask(assigneeCtx, task.ID)).ok(t)
}

func TestUnauthenticatedCallsAreDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Tasks.CreateTask(ctx, api.TaskCreateRequest{Title: "x"})
	expectFailure(t, res, err, CodeUnauthorized, MsgAuthRequired)
	list, err := f.svc.Tasks.GetTasks(ctx, api.TaskQuery{})
	expectFailure(t, list, err, CodeUnauthorized, MsgAuthRequired)
	feed, err := f.svc.Collab.GetActivityFeed(ctx, 0)
	expectFailure(t, feed, err, CodeUnauthorized, MsgAuthRequired)

	// an actor for a deleted account is treated as anonymous
	ghost := WithActor(ctx, Actor{UserID: "us-gone", Role: models.RoleAdmin})
	res, err = f.svc.Tasks.CreateTask(ghost, api.TaskCreateRequest{Title: "x"})
	expectFailure(t, res, err, CodeUnauthorized, MsgAuthRequired)
}

func TestDeleteMissingTask(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.user(t, "ann", models.RoleMember)

	res, err := f.svc.Tasks.DeleteTask(ctx, "tk-zzzz")
	expectFailure(t, res, err, CodeNotFound, MsgTaskNotFound)
}

func TestUpdateTaskValidation(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.user(t, "ann", models.RoleMember)
	task := check(f.svc.Tasks.CreateTask(ctx, api.TaskCreateRequest{Title: "Plan"})).ok(t)

	tests := []struct {
		name string
		req  api.TaskUpdateRequest
		want string
	}{
		{name: "empty", req: api.TaskUpdateRequest{}, want: "no fields to update"},
		{name: "blank title", req: api.TaskUpdateRequest{Title: strPtr("  ")}, want: "title cannot be empty"},
		{name: "bad status", req: api.TaskUpdateRequest{Status: strPtr("done")}, want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := f.svc.Tasks.UpdateTask(ctx, task.ID, tc.req)
			expectFailure(t, res, err, CodeInvalidArgument, tc.want)
		})
	}

	stale, err := f.svc.Tasks.UpdateTask(ctx, task.ID, api.TaskUpdateRequest{Title: strPtr("x"), ExpectedVersion: task.Version + 5})
	expectFailure(t, stale, err, CodeConflict, MsgTaskConflict)
}

func TestTaskStats(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.user(t, "ann", models.RoleMember)
	past := f.now.Add(-time.Hour)

	check(f.svc.Tasks.CreateTask(ctx, api.TaskCreateRequest{Title: "a", DueDate: &past})).ok(t)
	b := check(f.svc.Tasks.CreateTask(ctx, api.TaskCreateRequest{Title: "b", Category: strPtr("work")})).ok(t)
	check(f.svc.Tasks.CreateTask(ctx, api.TaskCreateRequest{Title: "c"})).ok(t)
	check(f.svc.Tasks.ToggleTaskStatus(ctx, b.ID)).ok(t)

	stats := check(f.svc.Tasks.GetTaskStats(ctx)).ok(t)
	if stats.Total != 3 || stats.Completed != 1 || stats.Overdue != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.CompletionRate != 33.3 {
		t.Fatalf("expected 33.3%%, got %v", stats.CompletionRate)
	}
	if stats.ByCategory["work"] != 1 || stats.ByStatus["pending"] != 2 {
		t.Fatalf("unexpected breakdown: %+v", stats)
	}
}

func TestGetTasksFiltersVisibility(t *testing.T) {
	f := newFixture(t)
	_, annCtx := f.user(t, "ann", models.RoleMember)
	_, bobCtx := f.user(t, "bob", models.RoleMember)
	_, adminCtx := f.user(t, "root", models.RoleAdmin)

	check(f.svc.Tasks.CreateTask(annCtx, api.TaskCreateRequest{Title: "ann's"})).ok(t)
	check(f.svc.Tasks.CreateTask(bobCtx, api.TaskCreateRequest{Title: "bob's"})).ok(t)

	if got := check(f.svc.Tasks.GetTasks(annCtx, api.TaskQuery{})).ok(t); len(got) != 1 {
		t.Fatalf("member should see own task only, got %d", len(got))
	}
	if got := check(f.svc.Tasks.GetTasks(adminCtx, api.TaskQuery{})).ok(t); len(got) != 2 {
		t.Fatalf("admin should see all tasks, got %d", len(got))
	}
	if got := check(f.svc.Tasks.GetTasks(adminCtx, api.TaskQuery{Mine: true})).ok(t); len(got) != 0 {
		t.Fatalf("admin mine filter should be empty, got %d", len(got))
	}

	bad, err := f.svc.Tasks.GetTasks(annCtx, api.TaskQuery{SortBy: "color"})
	expectFailure(t, bad, err, CodeInvalidArgument, "")
}

func TestAssignNotifiesAndWatches(t *testing.T) {
	f := newFixture(t)
	_, ownerCtx := f.user(t, "ann", models.RoleMember)
	bob, bobCtx := f.user(t, "bob", models.RoleMember)

	task := check(f.svc.Tasks.CreateTask(ownerCtx, api.TaskCreateRequest{Title: "Review"})).ok(t)
	assigned := check(f.svc.Tasks.AssignTask(ownerCtx, task.ID, bob.ID)).ok(t)
	if assigned.AssigneeID != bob.ID || !assigned.IsWatcher(bob.ID) {
		t.Fatalf("expected bob assigned and watching: %+v", assigned)
	}

	inbox := check(f.svc.Collab.GetNotifications(bobCtx, false)).ok(t)
	if inbox.Unread != 1 || inbox.Items[0].Type != collab.NotifyAssigned {
		t.Fatalf("unexpected inbox: %+v", inbox)
	}

	missing, err := f.svc.Tasks.AssignTask(ownerCtx, task.ID, "us-nobody")
	expectFailure(t, missing, err, CodeNotFound, MsgUserNotFound)
	denied, err := f.svc.Tasks.AssignTask(bobCtx, task.ID, bob.ID)
	expectFailure(t, denied, err, CodeForbidden, MsgPermissionDenied)
}

func TestWatchRequiresVisibility(t *testing.T) {
	f := newFixture(t)
	_, ownerCtx := f.user(t, "ann", models.RoleMember)
	_, bobCtx := f.user(t, "bob", models.RoleMember)
	task := check(f.svc.Tasks.CreateTask(ownerCtx, api.TaskCreateRequest{Title: "Plan"})).ok(t)

	res, err := f.svc.Tasks.WatchTask(bobCtx, task.ID)
	expectFailure(t, res, err, CodeForbidden, MsgPermissionDenied)

	unwatched := check(f.svc.Tasks.UnwatchTask(ownerCtx, task.ID)).ok(t)
	if len(unwatched.Watchers) != 0 {
		t.Fatalf("expected no watchers, got %v", unwatched.Watchers)
	}
}

func TestStatsRecordedThroughEvents(t *testing.T) {
	f := newFixture(t)
	ann, ctx := f.user(t, "ann", models.RoleMember)
	task := check(f.svc.Tasks.CreateTask(ctx, api.TaskCreateRequest{Title: "Plan"})).ok(t)
	check(f.svc.Tasks.ToggleTaskStatus(ctx, task.ID)).ok(t)

	me := check(f.svc.Users.GetUser(ctx, ann.ID)).ok(t)
	if me.CollaborationStats.TasksCreated != 1 || me.CollaborationStats.TasksCompleted != 1 {
		t.Fatalf("unexpected stats: %+v", me.CollaborationStats)
	}
	if me.PasswordHash != "" {
		t.Fatal("password hash must not be returned")
	}

	feed := check(f.svc.Collab.GetActivityFeed(ctx, 0)).ok(t)
	if len(feed) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(feed))
	}
}

func TestListsAreNeverNil(t *testing.T) {
	f := newFixture(t)
	_, ctx := f.user(t, "ann", models.RoleMember)

	tasks := check(f.svc.Tasks.GetTasks(ctx, api.TaskQuery{})).ok(t)
	if tasks == nil {
		t.Fatal("expected empty slice")
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %v", tasks)
	}
}
