package models

import (
	"reflect"
	"testing"
	"time"
)

func newTestTask() *Task {
	task := &Task{ID: "tk-ab12", Title: "  Write docs  ", OwnerID: "us-0001"}
	task.ApplyDefaults()
	return task
}

func TestTaskApplyDefaultsAndValidate(t *testing.T) {
	task := newTestTask()
	if task.Title != "Write docs" {
		t.Fatalf("expected trimmed title, got %q", task.Title)
	}
	if task.Status != StatusPending || task.Priority != PriorityMedium || task.Category != CategoryGeneral {
		t.Fatalf("unexpected defaults: %+v", task)
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	task.Title = "   "
	if err := task.Validate(); err == nil {
		t.Fatal("expected empty title to fail validation")
	}

	task = newTestTask()
	task.Priority = "urgent"
	if err := task.Validate(); err == nil {
		t.Fatal("expected invalid priority to fail validation")
	}
}

func TestTaskToggleCompletionRestoresStatus(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, start := range []TaskStatus{StatusPending, StatusInProgress, StatusCompleted} {
		t.Run(string(start), func(t *testing.T) {
			task := newTestTask()
			task.SetStatus(start, now)

			task.ToggleCompletion(now)
			task.ToggleCompletion(now)
			if task.Status != start {
				t.Fatalf("expected %q after double toggle, got %q", start, task.Status)
			}
		})
	}

	task := newTestTask()
	task.ToggleCompletion(now)
	if task.Status != StatusCompleted || task.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp, got %+v", task)
	}
	task.ToggleCompletion(now)
	if task.Status != StatusPending || task.CompletedAt != nil {
		t.Fatalf("expected pending without completed_at, got %+v", task)
	}
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	task := newTestTask()
	if task.IsOverdue(now) {
		t.Fatal("task without due date is never overdue")
	}
	task.DueDate = &future
	if task.IsOverdue(now) {
		t.Fatal("future due date is not overdue")
	}
	task.DueDate = &past
	if !task.IsOverdue(now) {
		t.Fatal("past due date should be overdue")
	}
	task.SetStatus(StatusCompleted, now)
	if task.IsOverdue(now) {
		t.Fatal("completed task is not overdue")
	}
}

func TestTaskShareAndUnshare(t *testing.T) {
	task := newTestTask()
	task.Share("us-0002", ShareView)
	if !task.IsSharedWith("us-0002") || task.IsCollaborator("us-0002") {
		t.Fatalf("expected view share, got %+v", task)
	}

	task.Share("us-0002", ShareEdit)
	if task.IsSharedWith("us-0002") || !task.IsCollaborator("us-0002") {
		t.Fatalf("expected edit share to replace view share, got %+v", task)
	}
	if !task.IsVisibleTo("us-0002") {
		t.Fatal("expected collaborator to see task")
	}

	if !task.Unshare("us-0002") {
		t.Fatal("expected unshare to report removal")
	}
	if task.Unshare("us-0002") {
		t.Fatal("expected second unshare to be a no-op")
	}
	if task.IsVisibleTo("us-0002") {
		t.Fatal("expected task hidden after unshare")
	}
}

func TestTaskCloneIsDeep(t *testing.T) {
	due := time.Now().UTC()
	task := newTestTask()
	task.Tags = []string{"a"}
	task.DueDate = &due
	task.Watchers = []string{"us-0001"}
	task.Comments = []Comment{{ID: "c1", Mentions: []string{"bob"}}}

	clone := task.Clone()
	if !reflect.DeepEqual(task, clone) {
		t.Fatalf("expected equal clone")
	}

	clone.Tags[0] = "b"
	clone.Watchers[0] = "us-9999"
	clone.Comments[0].Mentions[0] = "eve"
	*clone.DueDate = due.Add(time.Hour)

	if task.Tags[0] != "a" || task.Watchers[0] != "us-0001" || task.Comments[0].Mentions[0] != "bob" || !task.DueDate.Equal(due) {
		t.Fatalf("clone mutation leaked into original: %+v", task)
	}
}

func TestTaskRemoveCommentDropsReplies(t *testing.T) {
	task := newTestTask()
	task.Comments = []Comment{
		{ID: "c1"},
		{ID: "c2", ParentID: "c1"},
		{ID: "c3"},
	}
	if !task.RemoveComment("c1") {
		t.Fatal("expected removal")
	}
	if len(task.Comments) != 1 || task.Comments[0].ID != "c3" {
		t.Fatalf("expected only c3 to remain, got %+v", task.Comments)
	}
	if task.RemoveComment("missing") {
		t.Fatal("expected missing comment removal to fail")
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Backend", "api", "backend", ""})
	want := []string{"api", "backend"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if NormalizeTags([]string{" "}) != nil {
		t.Fatal("expected nil for blank tags")
	}
}

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "none", content: "no mentions here", want: nil},
		{name: "single", content: "hey @Alice take a look", want: []string{"alice"}},
		{name: "dedupe and order", content: "@bob @alice, @BOB.", want: []string{"bob", "alice"}},
		{name: "skip email", content: "mail bob@example.com or ping @carol", want: []string{"carol"}},
		{name: "dotted name", content: "cc @jane.doe!", want: []string{"jane.doe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMentions(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExtractMentions(%q)=%v want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestUserValidate(t *testing.T) {
	user := &User{Username: "alice", Email: "alice@example.com", Role: RoleMember}
	if err := user.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	user.Email = "not-an-email"
	if err := user.Validate(); err == nil {
		t.Fatal("expected invalid email error")
	}

	user.Email = "alice@example.com"
	user.Skills = []Skill{{Name: "go", Level: 6}}
	if err := user.Validate(); err == nil {
		t.Fatal("expected invalid skill level error")
	}
}

func TestUserSanitizedDropsHash(t *testing.T) {
	user := &User{Username: "alice", PasswordHash: "secret", Teams: []string{"core"}}
	out := user.Sanitized()
	if out.PasswordHash != "" {
		t.Fatal("expected password hash to be cleared")
	}
	if user.PasswordHash != "secret" {
		t.Fatal("expected original to keep hash")
	}
	out.Teams[0] = "other"
	if user.Teams[0] != "core" {
		t.Fatal("expected teams to be copied")
	}
}

func TestActivityInvolves(t *testing.T) {
	activity := Activity{ActorID: "a", Mentions: []string{"m"}, Assignees: []string{"s"}}
	for _, id := range []string{"a", "m", "s"} {
		if !activity.Involves(id) {
			t.Fatalf("expected activity to involve %s", id)
		}
	}
	if activity.Involves("x") || activity.Involves("") {
		t.Fatal("expected unrelated users to be excluded")
	}
}
