package server

import (
	"net/http"

	"taskhub/internal/api"
)

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	taskID, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	var req api.CommentCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	res, err := s.svc.Collab.AddComment(r.Context(), taskID, req)
	s.writeResult(w, r, http.StatusCreated, res.Envelope(), err)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	taskID, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	res, err := s.svc.Collab.GetComments(r.Context(), taskID)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleEditComment(w http.ResponseWriter, r *http.Request) {
	taskID, commentID, ok := s.commentPath(w, r)
	if !ok {
		return
	}
	var req api.CommentUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	res, err := s.svc.Collab.EditComment(r.Context(), taskID, commentID, req)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	taskID, commentID, ok := s.commentPath(w, r)
	if !ok {
		return
	}
	res, err := s.svc.Collab.DeleteComment(r.Context(), taskID, commentID)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleResolveComment(w http.ResponseWriter, r *http.Request) {
	taskID, commentID, ok := s.commentPath(w, r)
	if !ok {
		return
	}
	req := api.ResolveRequest{Resolved: true}
	if r.ContentLength != 0 && !s.decodeJSONReq(w, r, &req) {
		return
	}
	res, err := s.svc.Collab.ResolveComment(r.Context(), taskID, commentID, req.Resolved)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) commentPath(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	taskID, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return "", "", false
	}
	commentID, ok := s.pathIDOrBadRequest(w, r, "commentID")
	if !ok {
		return "", "", false
	}
	return taskID, commentID, true
}

func (s *Server) handleTaskActivity(w http.ResponseWriter, r *http.Request) {
	taskID, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	res, err := s.svc.Collab.GetTaskActivity(r.Context(), taskID, limit)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleActivityFeed(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	res, err := s.svc.Collab.GetActivityFeed(r.Context(), limit)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	unread, err := queryBool(r, "unread")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	res, err := s.svc.Collab.GetNotifications(r.Context(), unread)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	res, err := s.svc.Collab.MarkNotificationRead(r.Context(), id)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Collab.MarkAllNotificationsRead(r.Context())
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}
