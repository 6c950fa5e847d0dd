package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth.
	mux.HandleFunc("POST /v1/auth/login", s.handleAuthLogin)
	mux.HandleFunc("POST /v1/auth/logout", s.handleAuthLogout)
	mux.HandleFunc("GET /v1/auth/me", s.handleAuthMe)

	// Users.
	mux.HandleFunc("POST /v1/users", s.handleCreateUser)
	mux.HandleFunc("GET /v1/users", s.handleListUsers)
	mux.HandleFunc("GET /v1/users/{id}", s.handleGetUser)
	mux.HandleFunc("PATCH /v1/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /v1/users/{id}", s.handleDeleteUser)
	mux.HandleFunc("PUT /v1/users/{id}/password", s.handleSetPassword)

	// Tasks collection.
	mux.HandleFunc("POST /v1/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /v1/tasks", s.handleListTasks)
	mux.HandleFunc("GET /v1/tasks/stats", s.handleTaskStats)

	// Single task.
	mux.HandleFunc("GET /v1/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PATCH /v1/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /v1/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("POST /v1/tasks/{id}/toggle", s.handleToggleTask)
	mux.HandleFunc("POST /v1/tasks/{id}/assign", s.handleAssignTask)
	mux.HandleFunc("POST /v1/tasks/{id}/share", s.handleShareTask)
	mux.HandleFunc("DELETE /v1/tasks/{id}/share/{userID}", s.handleUnshareTask)
	mux.HandleFunc("POST /v1/tasks/{id}/watch", s.handleWatchTask)
	mux.HandleFunc("DELETE /v1/tasks/{id}/watch", s.handleUnwatchTask)

	// Comments.
	mux.HandleFunc("POST /v1/tasks/{id}/comments", s.handleAddComment)
	mux.HandleFunc("GET /v1/tasks/{id}/comments", s.handleListComments)
	mux.HandleFunc("PATCH /v1/tasks/{id}/comments/{commentID}", s.handleEditComment)
	mux.HandleFunc("DELETE /v1/tasks/{id}/comments/{commentID}", s.handleDeleteComment)
	mux.HandleFunc("POST /v1/tasks/{id}/comments/{commentID}/resolve", s.handleResolveComment)

	// Activity and notifications.
	mux.HandleFunc("GET /v1/tasks/{id}/activity", s.handleTaskActivity)
	mux.HandleFunc("GET /v1/activity", s.handleActivityFeed)
	mux.HandleFunc("GET /v1/notifications", s.handleNotifications)
	mux.HandleFunc("POST /v1/notifications/read", s.handleMarkAllNotificationsRead)
	mux.HandleFunc("POST /v1/notifications/{id}/read", s.handleMarkNotificationRead)

	return mux
}
