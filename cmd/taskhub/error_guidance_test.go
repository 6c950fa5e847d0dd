package main

import (
	"net"
	"testing"

	"taskhub/internal/api"
)

func TestFormatCLIError_NetworkGuidance(t *testing.T) {
	err := &net.DNSError{Err: "dial tcp: connection refused", Name: "127.0.0.1", IsTemporary: true}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: ensure a taskhub server is running at TASKHUB_API_URL.") {
		t.Fatalf("expected connectivity guidance, got %v", lines)
	}
	if !containsLine(lines, "hint: start local server manually with: taskhub srv") {
		t.Fatalf("expected manual-start guidance, got %v", lines)
	}
}

func TestFormatCLIError_SnapGuidance(t *testing.T) {
	t.Setenv("SNAP", "/snap/taskhub/current")
	err := &net.DNSError{Err: "connection refused", Name: "127.0.0.1"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: in snap installs, start the daemon with: snap start taskhub.daemon") {
		t.Fatalf("expected snap guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIUnknownServiceGuidance(t *testing.T) {
	err := &api.APIError{Status: 404, Message: "api error: 404 Not Found"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: verify TASKHUB_API_URL points to a taskhub server.") {
		t.Fatalf("expected api-url guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIAuthGuidance(t *testing.T) {
	err := &api.APIError{Status: 401, Code: "unauthorized", Message: "authentication required"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: sign in with: taskhub login --username <name>") {
		t.Fatalf("expected login guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIConflictGuidance(t *testing.T) {
	err := &api.APIError{Status: 409, Code: "conflict", Message: "task was modified concurrently"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: the record changed since it was read; fetch it again and retry.") {
		t.Fatalf("expected conflict guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIInternalGuidance(t *testing.T) {
	err := &api.APIError{Status: 500, Code: "internal", Message: "internal error"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: server returned an internal error; check server logs for details.") {
		t.Fatalf("expected internal-error guidance, got %v", lines)
	}
}

func TestUniqueLinesDropsBlanksAndDuplicates(t *testing.T) {
	got := uniqueLines([]string{"a", "", "b", "a"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected lines: %v", got)
	}
}

func containsLine(lines []string, expected string) bool {
	for _, line := range lines {
		if line == expected {
			return true
		}
	}
	return false
}
