// Package credential keeps CLI session tokens in the OS keyring.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName = "taskhub"
	tokenEnvKey = "TASKHUB_TOKEN"
)

// ErrNotFound is returned when no token is stored for a server.
var ErrNotFound = errors.New("no stored session; run `taskhub login`")

// Store reads and writes session tokens keyed by API URL.
type Store struct {
	open func() (keyring.Keyring, error)
}

// NewStore returns a Store backed by the system keyring.
func NewStore() *Store {
	return &Store{open: openKeyring}
}

// NewStoreWithKeyring returns a Store over ring. Tests use keyring.NewArrayKeyring.
func NewStoreWithKeyring(ring keyring.Keyring) *Store {
	return &Store{open: func() (keyring.Keyring, error) { return ring, nil }}
}

func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/taskhub/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("taskhub-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Token returns the session token for apiURL. TASKHUB_TOKEN wins over the
// keyring.
func (s *Store) Token(apiURL string) (string, error) {
	if token := strings.TrimSpace(os.Getenv(tokenEnvKey)); token != "" {
		return token, nil
	}
	ring, err := s.open()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(itemKey(apiURL))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("getting session for %s: %w", apiURL, err)
	}
	return string(item.Data), nil
}

// Save stores token for apiURL.
func (s *Store) Save(apiURL, token string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}
	err = ring.Set(keyring.Item{
		Key:         itemKey(apiURL),
		Data:        []byte(token),
		Label:       "taskhub session",
		Description: apiURL,
	})
	if err != nil {
		return fmt.Errorf("saving session for %s: %w", apiURL, err)
	}
	return nil
}

// Delete forgets the token for apiURL. A missing token is not an error.
func (s *Store) Delete(apiURL string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}
	if err := ring.Remove(itemKey(apiURL)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting session for %s: %w", apiURL, err)
	}
	return nil
}

func itemKey(apiURL string) string {
	return "session:" + strings.TrimRight(strings.TrimSpace(apiURL), "/")
}
