package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrRecordNotFound indicates that the record never existed for the owner.
	// Readers also return it for tombstones.
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordExists indicates a create for an id that is already taken,
	// tombstones included
	ErrRecordExists = errors.New("record already exists")

	// ErrRecordDeleted indicates a write to a tombstoned record
	ErrRecordDeleted = errors.New("record is deleted")
)
