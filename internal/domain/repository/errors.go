package repository

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on uniqueness violations: a duplicate name,
	// a duplicate edge on assign/grant, or a missing edge on remove/revoke.
	ErrConflict = errors.New("conflict")
)
