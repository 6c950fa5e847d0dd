package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"taskhub/internal/models"
)

func TestHTTPTimeoutFromEnv(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})

	t.Run("duration format", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "45s")
		if got := httpTimeoutFromEnv(); got != 45*time.Second {
			t.Fatalf("expected 45s timeout, got %v", got)
		}
	})

	t.Run("integer seconds", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "25")
		if got := httpTimeoutFromEnv(); got != 25*time.Second {
			t.Fatalf("expected 25s timeout, got %v", got)
		}
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "invalid")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})
}

func TestClientUnwrapsEnvelope(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Envelope{Success: true, Data: models.Task{ID: "tk-ab12", Title: "Ship"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL + "/").WithToken("secret")
	task, err := client.GetTask(context.Background(), "tk-ab12")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Title != "Ship" {
		t.Fatalf("unexpected task: %+v", task)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotPath != "/v1/tasks/tk-ab12" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestClientReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(Envelope{Success: false, Error: "Permission denied", Code: "forbidden"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetTask(context.Background(), "tk-ab12")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Message != "Permission denied" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
	if !IsCode(err, "forbidden") {
		t.Fatal("expected forbidden code")
	}
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).DeleteTask(context.Background(), "tk-ab12")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502 APIError, got %v", err)
	}
}

func TestTaskQueryRoundTrip(t *testing.T) {
	overdue := true
	in := TaskQuery{
		Statuses: []string{"pending", "in-progress"},
		Priority: "high",
		Tag:      "ops",
		Overdue:  &overdue,
		Watching: true,
		SortBy:   "due_date",
		SortDesc: true,
		Limit:    10,
		Offset:   5,
	}
	out, err := ParseTaskQuery(in.Values())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(out.Statuses) != 2 || out.Statuses[1] != "in-progress" {
		t.Fatalf("unexpected statuses %v", out.Statuses)
	}
	if out.Overdue == nil || !*out.Overdue || !out.Watching || !out.SortDesc || out.Limit != 10 || out.Offset != 5 {
		t.Fatalf("unexpected query %+v", out)
	}
}

func TestParseTaskQueryRejectsBadValues(t *testing.T) {
	for _, raw := range []string{"limit=-1", "offset=x", "order=sideways", "overdue=maybe"} {
		values, _ := url.ParseQuery(raw)
		if _, err := ParseTaskQuery(values); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
