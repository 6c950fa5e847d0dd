package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"taskhub/internal/api"
	"taskhub/internal/events"
	"taskhub/internal/models"
	"taskhub/internal/store"
)

// TaskService is the task controller: it checks the caller, applies the
// permission policy, persists through the task store, and emits events.
type TaskService struct {
	base
	tasks store.TaskStore
}

// NewTaskService constructs a TaskService.
func NewTaskService(tasks store.TaskStore, users store.UserStore, bus Publisher, opts Options) *TaskService {
	return &TaskService{base: newBase(users, bus, opts), tasks: tasks}
}

// CreateTask creates a task owned by the caller. The owner watches it from the start.
func (s *TaskService) CreateTask(ctx context.Context, req api.TaskCreateRequest) (Result[*models.Task], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.Task]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.Task](), nil
	}

	task := &models.Task{
		Title:    strings.TrimSpace(req.Title),
		OwnerID:  actor.UserID,
		Tags:     req.Tags,
		DueDate:  req.DueDate,
		Watchers: []string{actor.UserID},
	}
	if task.Title == "" {
		return invalidArgument[*models.Task]("title is required"), nil
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		if task.Status, err = models.ParseStatus(*req.Status); err != nil {
			return invalidArgument[*models.Task](err.Error()), nil
		}
	}
	if req.Priority != nil {
		if task.Priority, err = models.ParsePriority(*req.Priority); err != nil {
			return invalidArgument[*models.Task](err.Error()), nil
		}
	}
	if req.Category != nil {
		if task.Category, err = models.ParseCategory(*req.Category); err != nil {
			return invalidArgument[*models.Task](err.Error()), nil
		}
	}
	if req.AssigneeID != nil && strings.TrimSpace(*req.AssigneeID) != "" {
		assignee, err := s.activeUser(ctx, strings.TrimSpace(*req.AssigneeID))
		if err != nil {
			return taskFailure[*models.Task](err)
		}
		task.AssigneeID = assignee.ID
		task.AddWatcher(assignee.ID)
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return taskFailure[*models.Task](err)
	}

	s.logger.Info("task created", "task_id", created.ID, "owner_id", actor.UserID)
	s.emit(ctx, events.Event{Type: events.TaskCreated, ActorID: actor.UserID, TaskID: created.ID, Task: created.Clone()})
	if created.AssigneeID != "" {
		s.emit(ctx, events.Event{Type: events.TaskAssigned, ActorID: actor.UserID, TaskID: created.ID, Task: created.Clone(), TargetUserID: created.AssigneeID})
	}
	return okMessage(created, "Task created"), nil
}

// GetTask returns a task the caller may view.
func (s *TaskService) GetTask(ctx context.Context, id string) (Result[*models.Task], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.Task]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.Task](), nil
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return Result[*models.Task]{}, err
	}
	if task == nil {
		return fail[*models.Task](CodeNotFound, MsgTaskNotFound), nil
	}
	if !canView(actor, task) {
		return forbidden[*models.Task](), nil
	}
	return ok(task), nil
}

// GetTasks lists tasks matching query. Non-admins only see tasks they have
// standing on.
func (s *TaskService) GetTasks(ctx context.Context, query api.TaskQuery) (Result[[]models.Task], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[[]models.Task]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[[]models.Task](), nil
	}

	filter, err := s.taskFilter(actor, query)
	if err != nil {
		return invalidArgument[[]models.Task](err.Error()), nil
	}
	tasks, err := s.tasks.FindAll(ctx, filter)
	if err != nil {
		return Result[[]models.Task]{}, err
	}
	return ok(tasks), nil
}

func (s *TaskService) taskFilter(actor Actor, query api.TaskQuery) (store.TaskFilter, error) {
	filter := store.TaskFilter{
		OwnerID:    strings.TrimSpace(query.OwnerID),
		AssigneeID: strings.TrimSpace(query.AssigneeID),
		Tag:        query.Tag,
		Query:      query.Search,
		Overdue:    query.Overdue,
		Now:        s.now(),
		SortBy:     strings.TrimSpace(query.SortBy),
		SortDesc:   query.SortDesc,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}
	for _, raw := range query.Statuses {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	var err error
	if query.Priority != "" {
		if filter.Priority, err = models.ParsePriority(query.Priority); err != nil {
			return filter, err
		}
	}
	if query.Category != "" {
		if filter.Category, err = models.ParseCategory(query.Category); err != nil {
			return filter, err
		}
	}
	if err := store.ValidateSortKey(filter.SortBy); err != nil {
		return filter, err
	}
	if !actor.IsAdmin() || query.Mine {
		filter.VisibleTo = actor.UserID
	}
	if query.Watching {
		filter.WatchedBy = actor.UserID
	}
	return filter, nil
}

// UpdateTask applies a partial update. Owner, assignee, collaborators, and
// admins may update.
func (s *TaskService) UpdateTask(ctx context.Context, id string, req api.TaskUpdateRequest) (Result[*models.Task], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.Task]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.Task](), nil
	}

	update, err := taskUpdateFrom(req)
	if err != nil {
		return invalidArgument[*models.Task](err.Error()), nil
	}
	if update.Empty() {
		return invalidArgument[*models.Task]("no fields to update"), nil
	}

	before, after, err := s.mutate(ctx, actor, id, req.ExpectedVersion, canModify, func(task *models.Task) error {
		update.Apply(task, s.now())
		return nil
	})
	if err != nil {
		return taskFailure[*models.Task](err)
	}

	changes := taskChanges(before, after)
	s.emit(ctx, events.Event{Type: events.TaskUpdated, ActorID: actor.UserID, TaskID: id, Task: after.Clone(), Changes: changes})
	if before.Status != after.Status {
		s.emit(ctx, events.Event{Type: events.TaskStatusChanged, ActorID: actor.UserID, TaskID: id, Task: after.Clone(), Changes: map[string]any{"status": changes["status"]}})
	}
	return okMessage(after, "Task updated"), nil
}

func taskUpdateFrom(req api.TaskUpdateRequest) (store.TaskUpdate, error) {
	update := store.TaskUpdate{
		Description:  trimmedPtr(req.Description),
		Tags:         req.Tags,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return update, fmt.Errorf("title cannot be empty")
		}
		update.Title = &title
	}
	if req.Status != nil {
		status, err := models.ParseStatus(*req.Status)
		if err != nil {
			return update, err
		}
		update.Status = &status
	}
	if req.Priority != nil {
		priority, err := models.ParsePriority(*req.Priority)
		if err != nil {
			return update, err
		}
		update.Priority = &priority
	}
	if req.Category != nil {
		category, err := models.ParseCategory(*req.Category)
		if err != nil {
			return update, err
		}
		update.Category = &category
	}
	return update, nil
}

// DeleteTask removes a task. Owner, assignee, and admins may delete.
func (s *TaskService) DeleteTask(ctx context.Context, id string) (Result[bool], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[bool]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[bool](), nil
	}

	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return Result[bool]{}, err
	}
	if task == nil {
		return fail[bool](CodeNotFound, MsgTaskNotFound), nil
	}
	if !canDelete(actor, task) {
		return forbidden[bool](), nil
	}

	removed, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return Result[bool]{}, err
	}
	if !removed {
		return fail[bool](CodeNotFound, MsgTaskNotFound), nil
	}

	s.logger.Info("task deleted", "task_id", id, "actor_id", actor.UserID)
	s.emit(ctx, events.Event{Type: events.TaskDeleted, ActorID: actor.UserID, TaskID: id, Task: task})
	return okMessage(true, "Task deleted"), nil
}

// ToggleTaskStatus completes an open task, or reopens a completed one to
// the status it had before completion.
func (s *TaskService) ToggleTaskStatus(ctx context.Context, id string) (Result[*models.Task], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.Task]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.Task](), nil
	}

	before, after, err := s.mutate(ctx, actor, id, 0, canModify, func(task *models.Task) error {
		task.ToggleCompletion(s.now())
		return nil
	})
	if err != nil {
		return taskFailure[*models.Task](err)
	}

	s.emit(ctx, events.Event{
		Type:    events.TaskStatusChanged,
		ActorID: actor.UserID,
		TaskID:  id,
		Task:    after.Clone(),
		Changes: map[string]any{"status": change(before.Status, after.Status)},
	})
	return ok(after), nil
}

// AssignTask sets the assignee; an empty assigneeID unassigns. Only the
// owner and admins may assign. The assignee starts watching the task.
func (s *TaskService) AssignTask(ctx context.Context, id, assigneeID string) (Result[*models.Task], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.Task]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.Task](), nil
	}

	assigneeID = strings.TrimSpace(assigneeID)
	if assigneeID != "" {
		if _, err := s.activeUser(ctx, assigneeID); err != nil {
			return taskFailure[*models.Task](err)
		}
	}

	_, after, err := s.mutate(ctx, actor, id, 0, canManage, func(task *models.Task) error {
		task.AssigneeID = assigneeID
		task.AddWatcher(assigneeID)
		return nil
	})
	if err != nil {
		return taskFailure[*models.Task](err)
	}

	s.emit(ctx, events.Event{Type: events.TaskAssigned, ActorID: actor.UserID, TaskID: id, Task: after.Clone(), TargetUserID: assigneeID})
	return ok(after), nil
}

// ShareTask grants userID view or edit access. Only the owner and admins may share.
func (s *TaskService) ShareTask(ctx context.Context, id, userID, permission string) (Result[*models.Task], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.Task]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.Task](), nil
	}

	perm, err := models.ParseSharePermission(permission)
	if err != nil {
		return invalidArgument[*models.Task](err.Error()), nil
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return invalidArgument[*models.Task]("user_id is required"), nil
	}
	if _, err := s.activeUser(ctx, userID); err != nil {
		return taskFailure[*models.Task](err)
	}

	_, after, err := s.mutate(ctx, actor, id, 0, canManage, func(task *models.Task) error {
		if task.IsOwner(userID) {
			return invalidf("task is already owned by this user")
		}
		task.Share(userID, perm)
		return nil
	})
	if err != nil {
		return taskFailure[*models.Task](err)
	}

	s.emit(ctx, events.Event{
		Type:         events.TaskShared,
		ActorID:      actor.UserID,
		TaskID:       id,
		Task:         after.Clone(),
		TargetUserID: userID,
		Changes:      map[string]any{"permission": string(perm)},
	})
	return okMessage(after, "Task shared"), nil
}

// UnshareTask revokes access granted by ShareTask. A user who loses all
// access also stops watching.
func (s *TaskService) UnshareTask(ctx context.Context, id, userID string) (Result[*models.Task], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.Task]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.Task](), nil
	}

	userID = strings.TrimSpace(userID)
	_, after, err := s.mutate(ctx, actor, id, 0, canManage, func(task *models.Task) error {
		if !task.Unshare(userID) {
			return invalidf("task is not shared with this user")
		}
		if !task.IsVisibleTo(userID) {
			task.RemoveWatcher(userID)
		}
		return nil
	})
	if err != nil {
		return taskFailure[*models.Task](err)
	}

	s.emit(ctx, events.Event{Type: events.TaskUnshared, ActorID: actor.UserID, TaskID: id, Task: after.Clone(), TargetUserID: userID})
	return okMessage(after, "Task unshared"), nil
}

// WatchTask subscribes the caller to notifications about a task they can view.
func (s *TaskService) WatchTask(ctx context.Context, id string) (Result[*models.Task], error) {
	return s.setWatching(ctx, id, true)
}

// UnwatchTask removes the caller from the task's watchers.
func (s *TaskService) UnwatchTask(ctx context.Context, id string) (Result[*models.Task], error) {
	return s.setWatching(ctx, id, false)
}

func (s *TaskService) setWatching(ctx context.Context, id string, watch bool) (Result[*models.Task], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.Task]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.Task](), nil
	}

	allow := func(actor Actor, task *models.Task) bool {
		return canView(actor, task) || (!watch && task.IsWatcher(actor.UserID))
	}
	var changed bool
	_, after, err := s.mutate(ctx, actor, id, 0, allow, func(task *models.Task) error {
		if watch {
			changed = task.AddWatcher(actor.UserID)
		} else {
			changed = task.RemoveWatcher(actor.UserID)
		}
		return nil
	})
	if err != nil {
		return taskFailure[*models.Task](err)
	}

	if changed {
		eventType := events.TaskWatched
		if !watch {
			eventType = events.TaskUnwatched
		}
		s.emit(ctx, events.Event{Type: eventType, ActorID: actor.UserID, TaskID: id, Task: after.Clone(), TargetUserID: actor.UserID})
	}
	return ok(after), nil
}

// GetTaskStats summarizes the tasks visible to the caller.
func (s *TaskService) GetTaskStats(ctx context.Context) (Result[api.TaskStats], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[api.TaskStats]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[api.TaskStats](), nil
	}

	filter := store.TaskFilter{}
	if !actor.IsAdmin() {
		filter.VisibleTo = actor.UserID
	}
	tasks, err := s.tasks.FindAll(ctx, filter)
	if err != nil {
		return Result[api.TaskStats]{}, err
	}
	return ok(summarize(tasks, s.now())), nil
}

// mutate runs fn on the stored task after checking allow against the
// current state, inside the repository's read/modify/write.
func (s *TaskService) mutate(ctx context.Context, actor Actor, id string, expectedVersion int, allow func(Actor, *models.Task) bool, fn func(*models.Task) error) (before, after *models.Task, err error) {
	after, err = s.tasks.Modify(ctx, id, expectedVersion, func(task *models.Task) error {
		if !allow(actor, task) {
			return errDenied
		}
		before = task.Clone()
		return fn(task)
	})
	return before, after, err
}

// activeUser loads a user who can take part in collaboration.
func (s *TaskService) activeUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, errUserNotFound
	}
	return user, nil
}

func change(from, to any) map[string]any {
	return map[string]any{"from": from, "to": to}
}

func taskChanges(before, after *models.Task) map[string]any {
	changes := map[string]any{}
	if before.Title != after.Title {
		changes["title"] = change(before.Title, after.Title)
	}
	if before.Description != after.Description {
		changes["description"] = change(before.Description, after.Description)
	}
	if before.Status != after.Status {
		changes["status"] = change(before.Status, after.Status)
	}
	if before.Priority != after.Priority {
		changes["priority"] = change(before.Priority, after.Priority)
	}
	if before.Category != after.Category {
		changes["category"] = change(before.Category, after.Category)
	}
	if !slices.Equal(before.Tags, after.Tags) {
		changes["tags"] = change(before.Tags, after.Tags)
	}
	if !sameTime(before.DueDate, after.DueDate) {
		changes["due_date"] = change(before.DueDate, after.DueDate)
	}
	return changes
}
