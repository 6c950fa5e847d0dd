package store

import (
	"crypto/rand"
	"fmt"
	"regexp"
)

const (
	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idHashLength   = 4
	idMaxAttempts  = 20

	// DefaultTaskPrefix is used when no project prefix is configured.
	DefaultTaskPrefix = "tk"
	userPrefix        = "us"
)

var idPattern = regexp.MustCompile(`^[a-z]{2}-[0-9a-z]{4}$`)

// ValidID reports whether id has the canonical <prefix>-xxxx form.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// ValidPrefix reports whether prefix is two lowercase letters.
func ValidPrefix(prefix string) bool {
	if len(prefix) != 2 {
		return false
	}
	for _, r := range prefix {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// GenerateID returns a new canonical id using prefix.
// It retries on collisions using the provided exists function.
func GenerateID(prefix string, exists func(string) bool) (string, error) {
	if !ValidPrefix(prefix) {
		return "", fmt.Errorf("id prefix must be 2 lowercase letters")
	}

	for i := 0; i < idMaxAttempts; i++ {
		hash, err := randomBase36(idHashLength)
		if err != nil {
			return "", err
		}
		id := fmt.Sprintf("%s-%s", prefix, hash)
		if exists == nil || !exists(id) {
			return id, nil
		}
	}

	return "", fmt.Errorf("unable to generate unique id")
}

func randomBase36(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		out[i] = base36Alphabet[int(b[i])%len(base36Alphabet)]
	}
	return string(out), nil
}
