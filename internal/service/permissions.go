package service

import "taskhub/internal/models"

// canView: admins, owner, assignee, collaborators, and users the task is shared with.
func canView(actor Actor, task *models.Task) bool {
	return actor.IsAdmin() || task.IsVisibleTo(actor.UserID)
}

// canModify: admins, owner, assignee, and edit collaborators.
func canModify(actor Actor, task *models.Task) bool {
	return actor.IsAdmin() || task.IsOwner(actor.UserID) || task.IsAssignee(actor.UserID) || task.IsCollaborator(actor.UserID)
}

// canDelete: admins, owner, and assignee.
func canDelete(actor Actor, task *models.Task) bool {
	return actor.IsAdmin() || task.IsOwner(actor.UserID) || task.IsAssignee(actor.UserID)
}

// canManage covers assignment and sharing: admins and owner.
func canManage(actor Actor, task *models.Task) bool {
	return actor.IsAdmin() || task.IsOwner(actor.UserID)
}

// canEditComment: the author and admins.
func canEditComment(actor Actor, comment *models.Comment) bool {
	return actor.IsAdmin() || comment.AuthorID == actor.UserID
}

// canDeleteComment: the author, the task owner, and admins.
func canDeleteComment(actor Actor, task *models.Task, comment *models.Comment) bool {
	return canEditComment(actor, comment) || task.IsOwner(actor.UserID)
}

// canManageUser: the user themselves and admins.
func canManageUser(actor Actor, userID string) bool {
	return actor.IsAdmin() || actor.UserID == userID
}
