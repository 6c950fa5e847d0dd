package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// stdin is where passwords are read from; tests replace it.
var stdin io.Reader = os.Stdin

func splitCommaList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// optionalString returns a pointer to value when the named flag was set.
func optionalString(changed bool, value string) *string {
	if !changed {
		return nil
	}
	return &value
}

func readPassword(r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	password := strings.TrimSpace(string(raw))
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	return password, nil
}
