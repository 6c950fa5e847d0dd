package server

import (
	"net/http"

	"taskhub/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.Envelope{
		Success: true,
		Data:    api.HealthResponse{Status: "ok", Storage: s.storageName},
	})
}
