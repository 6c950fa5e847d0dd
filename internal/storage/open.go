package storage

import (
	"context"
	"fmt"
	"strings"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	// Path is the directory for file storage or the database file for sqlite.
	Path string
	// DSN is the postgres connection string.
	DSN string
}

// BackendNames lists supported backend names.
func BackendNames() []string {
	return []string{BackendMemory, BackendFile, BackendSQLite, BackendPostgres}
}

// OpenBackend opens the backend named by opts.
func OpenBackend(ctx context.Context, opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendMemory:
		return NewMemoryBackend(), nil
	case BackendFile:
		return NewFileBackend(opts.Path)
	case BackendSQLite:
		return OpenSQLite(opts.Path)
	case BackendPostgres:
		return OpenPostgres(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want one of %s)", opts.Backend, strings.Join(BackendNames(), ", "))
	}
}

// Open opens the backend named by opts and wraps it as JSON storage.
func Open(ctx context.Context, opts Options) (*JSONStorage, error) {
	backend, err := OpenBackend(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewJSONStorage(backend), nil
}
