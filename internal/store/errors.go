package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateID     = errors.New("id already exists")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrEmailTaken      = errors.New("email already exists")
	ErrVersionConflict = errors.New("version conflict")
	ErrInvalid         = errors.New("invalid entity")
	// ErrNotFirstUser is returned by CreateFirst once any user exists.
	ErrNotFirstUser = errors.New("users already exist")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}
