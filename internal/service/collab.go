package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"taskhub/internal/api"
	"taskhub/internal/collab"
	"taskhub/internal/events"
	"taskhub/internal/models"
	"taskhub/internal/store"
)

// CollaborationService handles comments, the activity feed, and inboxes.
type CollaborationService struct {
	base
	tasks    store.TaskStore
	mentions *collab.MentionResolver
	feed     *collab.Feed
	inbox    *collab.Inbox
}

func NewCollaborationService(tasks store.TaskStore, users store.UserStore, feed *collab.Feed, inbox *collab.Inbox, bus Publisher, opts Options) *CollaborationService {
	return &CollaborationService{
		base:     newBase(users, bus, opts),
		tasks:    tasks,
		mentions: collab.NewMentionResolver(users),
		feed:     feed,
		inbox:    inbox,
	}
}

// AddComment posts a comment on a task the caller can view. Mentioned users
// are resolved to ids and the author starts watching the task.
func (s *CollaborationService) AddComment(ctx context.Context, taskID string, req api.CommentCreateRequest) (Result[*models.Comment], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.Comment]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.Comment](), nil
	}

	content, err := models.ValidateCommentContent(req.Content)
	if err != nil {
		return invalidArgument[*models.Comment](err.Error()), nil
	}
	mentions := models.ExtractMentions(content)
	mentionedIDs, err := s.mentions.Resolve(ctx, mentions)
	if err != nil {
		return Result[*models.Comment]{}, err
	}

	now := s.now()
	comment := models.Comment{
		ID:               uuid.NewString(),
		TaskID:           taskID,
		ParentID:         strings.TrimSpace(req.ParentID),
		AuthorID:         actor.UserID,
		Content:          content,
		Mentions:         mentions,
		MentionedUserIDs: mentionedIDs,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	task, err := s.tasks.Modify(ctx, taskID, 0, func(task *models.Task) error {
		if !canView(actor, task) {
			return errDenied
		}
		if comment.ParentID != "" && task.FindComment(comment.ParentID) < 0 {
			return errCommentNotFound
		}
		task.Comments = append(task.Comments, comment)
		task.AddWatcher(actor.UserID)
		return nil
	})
	if err != nil {
		return taskFailure[*models.Comment](err)
	}

	s.emit(ctx, events.Event{
		Type:     events.CommentAdded,
		ActorID:  actor.UserID,
		TaskID:   taskID,
		Task:     task,
		Comment:  &comment,
		Mentions: mentionedIDs,
	})
	return okMessage(&comment, "Comment added"), nil
}

// EditComment replaces a comment's content. Only its author or an admin may edit.
func (s *CollaborationService) EditComment(ctx context.Context, taskID, commentID string, req api.CommentUpdateRequest) (Result[*models.Comment], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.Comment]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.Comment](), nil
	}

	content, err := models.ValidateCommentContent(req.Content)
	if err != nil {
		return invalidArgument[*models.Comment](err.Error()), nil
	}
	mentions := models.ExtractMentions(content)
	mentionedIDs, err := s.mentions.Resolve(ctx, mentions)
	if err != nil {
		return Result[*models.Comment]{}, err
	}

	var edited models.Comment
	task, err := s.modifyComment(ctx, actor, taskID, commentID, func(task *models.Task, comment *models.Comment) error {
		if !canEditComment(actor, comment) {
			return errDenied
		}
		comment.Content = content
		comment.Mentions = mentions
		comment.MentionedUserIDs = mentionedIDs
		comment.UpdatedAt = s.now()
		edited = comment.Clone()
		return nil
	})
	if err != nil {
		return taskFailure[*models.Comment](err)
	}

	s.emit(ctx, events.Event{Type: events.CommentUpdated, ActorID: actor.UserID, TaskID: taskID, Task: task, Comment: &edited, Mentions: mentionedIDs})
	return okMessage(&edited, "Comment updated"), nil
}

// DeleteComment removes a comment and its replies. The author, the task
// owner, and admins may delete.
func (s *CollaborationService) DeleteComment(ctx context.Context, taskID, commentID string) (Result[bool], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[bool]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[bool](), nil
	}

	var deleted models.Comment
	task, err := s.modifyComment(ctx, actor, taskID, commentID, func(task *models.Task, comment *models.Comment) error {
		if !canDeleteComment(actor, task, comment) {
			return errDenied
		}
		deleted = comment.Clone()
		task.RemoveComment(commentID)
		return nil
	})
	if err != nil {
		return taskFailure[bool](err)
	}

	s.emit(ctx, events.Event{Type: events.CommentDeleted, ActorID: actor.UserID, TaskID: taskID, Task: task, Comment: &deleted})
	return okMessage(true, "Comment deleted"), nil
}

// ResolveComment sets the resolved flag. The comment author and anyone who
// may modify the task can resolve.
func (s *CollaborationService) ResolveComment(ctx context.Context, taskID, commentID string, resolved bool) (Result[*models.Comment], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[*models.Comment]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[*models.Comment](), nil
	}

	var updated models.Comment
	task, err := s.modifyComment(ctx, actor, taskID, commentID, func(task *models.Task, comment *models.Comment) error {
		if !canEditComment(actor, comment) && !canModify(actor, task) {
			return errDenied
		}
		comment.Resolved = resolved
		comment.UpdatedAt = s.now()
		updated = comment.Clone()
		return nil
	})
	if err != nil {
		return taskFailure[*models.Comment](err)
	}

	s.emit(ctx, events.Event{
		Type:    events.CommentResolved,
		ActorID: actor.UserID,
		TaskID:  taskID,
		Task:    task,
		Comment: &updated,
		Changes: map[string]any{"resolved": resolved},
	})
	return ok(&updated), nil
}

// modifyComment locates commentID on a task the caller can view and runs fn
// on it inside the task's read/modify/write.
func (s *CollaborationService) modifyComment(ctx context.Context, actor Actor, taskID, commentID string, fn func(*models.Task, *models.Comment) error) (*models.Task, error) {
	return s.tasks.Modify(ctx, taskID, 0, func(task *models.Task) error {
		if !canView(actor, task) {
			return errDenied
		}
		idx := task.FindComment(commentID)
		if idx < 0 {
			return errCommentNotFound
		}
		return fn(task, &task.Comments[idx])
	})
}

// GetComments returns a task's comments in posting order.
func (s *CollaborationService) GetComments(ctx context.Context, taskID string) (Result[[]models.Comment], error) {
	task, res, err := viewableTask[[]models.Comment](ctx, s, taskID)
	if task == nil {
		return res, err
	}
	comments := task.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	return ok(comments), nil
}

// GetActivityFeed returns the activity involving the caller, newest first.
func (s *CollaborationService) GetActivityFeed(ctx context.Context, limit int) (Result[[]models.Activity], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[[]models.Activity]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[[]models.Activity](), nil
	}
	return ok(s.feed.ForUser(actor.UserID, limit)), nil
}

// GetTaskActivity returns the activity recorded for a task the caller can view.
func (s *CollaborationService) GetTaskActivity(ctx context.Context, taskID string, limit int) (Result[[]models.Activity], error) {
	task, res, err := viewableTask[[]models.Activity](ctx, s, taskID)
	if task == nil {
		return res, err
	}
	return ok(s.feed.ForTask(taskID, limit)), nil
}

// viewableTask loads taskID for the caller. When the task is nil, the
// result holds the failure to return.
func viewableTask[T any](ctx context.Context, s *CollaborationService, taskID string) (*models.Task, Result[T], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return nil, Result[T]{}, err
	}
	if actor.UserID == "" {
		return nil, unauthorized[T](), nil
	}
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, Result[T]{}, err
	}
	if task == nil {
		return nil, fail[T](CodeNotFound, MsgTaskNotFound), nil
	}
	if !canView(actor, task) {
		return nil, forbidden[T](), nil
	}
	return task, Result[T]{}, nil
}

// GetNotifications returns the caller's inbox, newest first.
func (s *CollaborationService) GetNotifications(ctx context.Context, unreadOnly bool) (Result[api.NotificationList], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[api.NotificationList]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[api.NotificationList](), nil
	}
	return ok(api.NotificationList{
		Items:  s.inbox.List(actor.UserID, unreadOnly),
		Unread: s.inbox.UnreadCount(actor.UserID),
	}), nil
}

// MarkNotificationRead marks one of the caller's notifications read.
func (s *CollaborationService) MarkNotificationRead(ctx context.Context, id string) (Result[bool], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[bool]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[bool](), nil
	}
	if !s.inbox.MarkRead(actor.UserID, id) {
		return fail[bool](CodeNotFound, MsgNotificationNotFound), nil
	}
	return ok(true), nil
}

// MarkAllNotificationsRead marks the caller's inbox read and returns how
// many notifications changed.
func (s *CollaborationService) MarkAllNotificationsRead(ctx context.Context) (Result[int], error) {
	actor, _, err := s.currentUser(ctx)
	if err != nil {
		return Result[int]{}, err
	}
	if actor.UserID == "" {
		return unauthorized[int](), nil
	}
	return ok(s.inbox.MarkAllRead(actor.UserID)), nil
}
