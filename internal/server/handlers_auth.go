package server

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskhub/internal/api"
	"taskhub/internal/service"
)

func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	now := time.Now().UTC()
	limiterKey := loginAttemptKey(req.Username, r)
	if !s.loginLimiter.Allow(limiterKey, now) {
		if wait := s.loginLimiter.RetryAfter(limiterKey, now); wait > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(wait.Round(time.Second)/time.Second)))
		}
		s.writeErrorReq(w, r, http.StatusTooManyRequests, apiError{
			status:  http.StatusTooManyRequests,
			code:    "resource_exhausted",
			errCode: ErrCodeResourceExhausted,
			err:     fmt.Errorf("too many login attempts; retry later"),
		})
		return
	}

	res, err := s.svc.Auth.Login(r.Context(), req.Username, req.Password)
	if err == nil {
		if res.Success {
			s.loginLimiter.Reset(limiterKey)
		} else if res.Code == service.CodeUnauthorized {
			s.loginLimiter.RegisterFailure(limiterKey, now)
		}
	}
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if principal, ok := authPrincipalFromContext(r.Context()); ok {
		token = principal.Token
	}
	res, err := s.svc.Auth.Logout(r.Context(), token)
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func (s *Server) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Users.CurrentUser(r.Context())
	s.writeResult(w, r, http.StatusOK, res.Envelope(), err)
}

func loginAttemptKey(username string, r *http.Request) string {
	user := strings.ToLower(strings.TrimSpace(username))
	if user == "" {
		user = "<empty>"
	}
	ip := requestClientIP(r)
	if ip == "" {
		ip = "<unknown>"
	}
	return ip + "|" + user
}

func requestClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remote)
	if err == nil {
		return strings.TrimSpace(host)
	}
	return remote
}
