package server

import (
	"net/http"

	"taskhub/internal/api"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req api.TaskCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	res, err := s.svc.Tasks.CreateTask(r.Context(), req)
	s.writeResult(w, r, http.StatusCreated, res.Envelope(), err)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	query, err := api.ParseTaskQuery(r.URL.Query())
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidQuery))
		return
	}
	res, err := s.svc.Tasks.GetTasks(r.Context(), query)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleTaskStats(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Tasks.GetTaskStats(r.Context())
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	res, err := s.svc.Tasks.GetTask(r.Context(), id)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	var req api.TaskUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	res, err := s.svc.Tasks.UpdateTask(r.Context(), id, req)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	res, err := s.svc.Tasks.DeleteTask(r.Context(), id)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	res, err := s.svc.Tasks.ToggleTaskStatus(r.Context(), id)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	var req api.AssignRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	res, err := s.svc.Tasks.AssignTask(r.Context(), id, req.AssigneeID)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleShareTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	var req api.ShareRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	res, err := s.svc.Tasks.ShareTask(r.Context(), id, req.UserID, req.Permission)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleUnshareTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	userID, ok := s.pathIDOrBadRequest(w, r, "userID")
	if !ok {
		return
	}
	res, err := s.svc.Tasks.UnshareTask(r.Context(), id, userID)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleWatchTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	res, err := s.svc.Tasks.WatchTask(r.Context(), id)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleUnwatchTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	res, err := s.svc.Tasks.UnwatchTask(r.Context(), id)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}
