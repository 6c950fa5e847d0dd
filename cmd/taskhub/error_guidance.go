package main

import (
	"context"
	"errors"
	"net"
	"os"

	"taskhub/internal/api"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized":
			lines = append(lines, "hint: sign in with: taskhub login --username <name>")
		case "forbidden":
			lines = append(lines, "hint: ask the task owner to share it with you, or check your role with: taskhub whoami")
		case "conflict":
			lines = append(lines, "hint: the record changed since it was read; fetch it again and retry.")
		case "resource_exhausted":
			lines = append(lines, "hint: too many attempts; retry shortly.")
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify TASKHUB_API_URL points to a taskhub server.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase TASKHUB_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a taskhub server is running at TASKHUB_API_URL.",
			"hint: start local server manually with: taskhub srv",
			"hint: you can increase TASKHUB_HTTP_TIMEOUT for slower environments.",
		)
		if snapHint := snapStartHint(); snapHint != "" {
			lines = append(lines, snapHint)
		}
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func snapStartHint() string {
	if os.Getenv("SNAP") == "" && os.Getenv("SNAP_NAME") == "" {
		return ""
	}
	return "hint: in snap installs, start the daemon with: snap start taskhub.daemon"
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
