package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// Storage is the persistence boundary used by repositories: whole JSON
// documents saved and loaded by key.
type Storage interface {
	Save(ctx context.Context, key string, value any) error
	// Load decodes the document at key into dst. When the key is absent it
	// returns false and leaves dst untouched, so dst carries the default.
	Load(ctx context.Context, key string, dst any) (bool, error)
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Backend stores raw document bytes by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// JSONStorage adapts a Backend to Storage with JSON encoding.
type JSONStorage struct {
	backend Backend
}

var _ Storage = (*JSONStorage)(nil)

// NewJSONStorage wraps backend.
func NewJSONStorage(backend Backend) *JSONStorage {
	return &JSONStorage{backend: backend}
}

// Save encodes value and writes it under key.
func (s *JSONStorage) Save(ctx context.Context, key string, value any) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.backend.Put(ctx, key, data)
}

// Load reads key into dst.
func (s *JSONStorage) Load(ctx context.Context, key string, dst any) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *JSONStorage) Remove(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.backend.Delete(ctx, key)
}

// Clear deletes every document.
func (s *JSONStorage) Clear(ctx context.Context) error {
	return s.backend.Clear(ctx)
}

// Close releases the backend.
func (s *JSONStorage) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// ValidateKey checks that key is usable by every backend, including as a file name.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
