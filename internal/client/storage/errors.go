package storage

import (
	"errors"
	"fmt"
)

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrRecordNotFound indicates that the record is not in the local store
	ErrRecordNotFound = errors.New("record not found")

	// ErrEntryNotFound indicates that the mutation entry is not in the queue
	ErrEntryNotFound = errors.New("mutation entry not found")

	// ErrEntryExists indicates an attempt to append an entry id twice
	ErrEntryExists = errors.New("mutation entry already exists")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrLocalStorage matches every LocalError
	ErrLocalStorage = errors.New("local storage failure")
)

// LocalError reports that the device store could not complete a read or write
// (quota, corruption, closed database). It is never a sync failure.
type LocalError struct {
	Err error  // underlying cause
	Op  string // storage operation, e.g. "put record"
}

func (e *LocalError) Error() string {
	return fmt.Sprintf("local storage: %s: %v", e.Op, e.Err)
}

// Unwrap exposes both ErrLocalStorage and the cause to errors.Is/As.
func (e *LocalError) Unwrap() []error {
	return []error{ErrLocalStorage, e.Err}
}

// WrapLocal wraps err as a LocalError for op. Not-found sentinels pass
// through unchanged since they are answers, not failures.
func WrapLocal(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrRecordNotFound),
		errors.Is(err, ErrEntryNotFound),
		errors.Is(err, ErrAuthNotFound),
		errors.Is(err, ErrEntryExists):
		return err
	}
	var le *LocalError
	if errors.As(err, &le) {
		return err
	}
	return &LocalError{Op: op, Err: err}
}
