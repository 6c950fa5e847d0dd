package server

import (
	"net/http"

	"taskhub/internal/api"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req api.UserCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	res, err := s.svc.Users.CreateUser(r.Context(), req)
	s.writeResult(w, r, http.StatusCreated, res.Envelope(), err)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	query, err := api.ParseUserQuery(r.URL.Query())
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidQuery))
		return
	}
	res, err := s.svc.Users.GetUsers(r.Context(), query)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	res, err := s.svc.Users.GetUser(r.Context(), id)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	var req api.UserUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	res, err := s.svc.Users.UpdateUser(r.Context(), id, req)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	res, err := s.svc.Users.DeleteUser(r.Context(), id)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r, "id")
	if !ok {
		return
	}
	var req api.PasswordRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	res, err := s.svc.Users.SetPassword(r.Context(), id, req)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}
