package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskhub/internal/api"
	"taskhub/internal/service"
)

func TestLoginLogoutFlow(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, newTestServer(t))
	authed, _ := signUp(t, client, "alice", "admin")

	if _, err := authed.Me(ctx); err != nil {
		t.Fatalf("me before logout: %v", err)
	}
	if err := authed.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err := authed.Me(ctx)
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected api error after logout, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Code != service.CodeUnauthorized {
		t.Fatalf("unexpected error after logout: %+v", apiErr)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, newTestServer(t))
	signUp(t, client, "alice", "")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "wrong"},
		{"unknown user", "mallory", "correct horse"},
		{"empty password", "alice", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Login(ctx, api.LoginRequest{Username: tt.username, Password: tt.password})
			var apiErr *api.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected api error, got %v", err)
			}
			if apiErr.Status != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", apiErr.Status)
			}
			if apiErr.ErrorCode != ErrCodeInvalidLogin {
				t.Fatalf("expected error_code %d, got %d", ErrCodeInvalidLogin, apiErr.ErrorCode)
			}
			if apiErr.Message != service.MsgInvalidCredentials {
				t.Fatalf("unexpected message %q", apiErr.Message)
			}
		})
	}
}

func TestLoginRateLimit(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	login := func(password string) *httptest.ResponseRecorder {
		body := []byte(`{"username":"alice","password":"` + password + `"}`)
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < loginMaxFailures; i++ {
		if w := login("wrong"); w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d (%s)", i+1, w.Code, w.Body.String())
		}
	}

	w := login("wrong")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d (%s)", w.Code, w.Body.String())
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	env := decodeTestEnvelope(t, w)
	if env.ErrorCode != ErrCodeResourceExhausted {
		t.Fatalf("expected error_code %d, got %d", ErrCodeResourceExhausted, env.ErrorCode)
	}
}

func TestLoginRateLimiter(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := newLoginRateLimiter(2, time.Minute, 10*time.Minute)

	if !limiter.Allow("k", now) {
		t.Fatal("fresh key should be allowed")
	}
	limiter.RegisterFailure("k", now)
	limiter.RegisterFailure("k", now.Add(time.Second))
	if limiter.Allow("k", now.Add(2*time.Second)) {
		t.Fatal("key should be blocked after max failures")
	}
	if wait := limiter.RetryAfter("k", now.Add(2*time.Second)); wait <= 0 || wait > 10*time.Minute {
		t.Fatalf("unexpected retry-after %s", wait)
	}
	if !limiter.Allow("k", now.Add(11*time.Minute)) {
		t.Fatal("block should expire")
	}

	limiter.RegisterFailure("other", now)
	limiter.Reset("other")
	limiter.RegisterFailure("other", now)
	if !limiter.Allow("other", now) {
		t.Fatal("reset should clear failures")
	}
}

func TestLoginAttemptKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	if got := loginAttemptKey("  Alice ", req); got != "10.0.0.7|alice" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := loginAttemptKey("", req); got != "10.0.0.7|<empty>" {
		t.Fatalf("unexpected key %q", got)
	}
}
