// Package store holds the persistence layer: exact-match user lookups and
// the per-user movie list, both over database/sql.
package store

import "errors"

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict means a UNIQUE constraint rejected the write.
	ErrConflict = errors.New("store: already exists")
	// ErrForbidden means the row exists but belongs to another user.
	ErrForbidden = errors.New("store: forbidden")
	// ErrInvalid means the input failed validation before reaching SQL.
	ErrInvalid = errors.New("store: invalid input")
)
