package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskhub/internal/api"
	"taskhub/internal/service"
	"taskhub/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(storage.NewMemoryStorage(), service.Config{Logger: logger})
	return New("127.0.0.1:0", svc, Options{Logger: logger, StorageName: "memory"})
}

// newTestClient serves srv over a loopback listener and returns an
// anonymous client for it.
func newTestClient(t *testing.T, srv *Server) *api.Client {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return api.NewClient(ts.URL)
}

// signUp creates an account and returns a client logged in as it.
func signUp(t *testing.T, client *api.Client, username, role string) (*api.Client, string) {
	t.Helper()
	ctx := context.Background()
	user, err := client.CreateUser(ctx, api.UserCreateRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	login, err := client.Login(ctx, api.LoginRequest{Username: username, Password: "correct horse"})
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return client.WithToken(login.Token), user.ID
}

func decodeTestEnvelope(t *testing.T, w *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var env api.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, w.Body.String())
	}
	return env
}

func TestListenAddrRemoteGuard(t *testing.T) {
	t.Run("allows loopback", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		addr, err := ListenAddr("http://127.0.0.1:7433")
		if err != nil {
			t.Fatalf("expected loopback to be allowed, got error: %v", err)
		}
		if addr != "127.0.0.1:7433" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})

	t.Run("blocks non-loopback by default", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		if _, err := ListenAddr("http://0.0.0.0:7433"); err == nil {
			t.Fatal("expected error for non-loopback listen host")
		}
	})

	t.Run("allows non-loopback when explicitly enabled", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "true")
		addr, err := ListenAddr("http://0.0.0.0:7433")
		if err != nil {
			t.Fatalf("expected allow-remote to permit host, got error: %v", err)
		}
		if addr != "0.0.0.0:7433" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, newTestServer(t))
	health, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if health.Status != "ok" || health.Storage != "memory" {
		t.Fatalf("unexpected health: %+v", health)
	}
}

func TestWithAuth(t *testing.T) {
	t.Run("missing token proceeds anonymously", func(t *testing.T) {
		srv := newTestServer(t)
		authenticated := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, authenticated = service.ActorFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})

		req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
		w := httptest.NewRecorder()
		srv.withAuth(next).ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", w.Code)
		}
		if authenticated {
			t.Fatal("expected anonymous request")
		}
	})

	t.Run("unknown token is anonymous and protected routes reject it", func(t *testing.T) {
		srv := newTestServer(t)
		req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
		req.Header.Set("Authorization", "Bearer not-a-session")
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d (%s)", w.Code, w.Body.String())
		}
		env := decodeTestEnvelope(t, w)
		if env.Success || env.Code != service.CodeUnauthorized {
			t.Fatalf("unexpected envelope: %+v", env)
		}
		if env.ErrorCode != ErrCodeUnauthorized {
			t.Fatalf("expected error_code %d, got %d", ErrCodeUnauthorized, env.ErrorCode)
		}
	})

	t.Run("valid token sets the actor", func(t *testing.T) {
		srv := newTestServer(t)
		client := newTestClient(t, srv)
		authed, userID := signUp(t, client, "alice", "")

		me, err := authed.Me(context.Background())
		if err != nil {
			t.Fatalf("me: %v", err)
		}
		if me.ID != userID || me.Username != "alice" {
			t.Fatalf("unexpected me: %+v", me)
		}
		if me.PasswordHash != "" {
			t.Fatal("password hash must not leave the server")
		}
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := bearerToken(req); got != tt.want {
			t.Fatalf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
