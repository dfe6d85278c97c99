// Package store persists products, categories and users with gorm.
package store

import "errors"

var (
	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an update matched no row because the
	// record was deleted after it was loaded.
	ErrConflict = errors.New("record deleted concurrently")
)
