// Package validation checks user input shared by the client and the server.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
	MinPasswordLen = 10
)

// UsernamePattern allows latin letters, digits and underscores
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ErrInvalidRecordID is returned for ids that are not UUIDs
var ErrInvalidRecordID = errors.New("record id must be a UUID")

// ValidateUsername checks length and character set
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("username cannot be empty")
	case len(username) < MinUsernameLen:
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	case len(username) > MaxUsernameLen:
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	case !UsernamePattern.MatchString(username):
		return fmt.Errorf("username can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}
	return nil
}

// ValidatePassword checks the minimum length
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}
	return nil
}

// ValidateRecordID accepts any UUID form the uuid package parses
func ValidateRecordID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRecordID, id)
	}
	return nil
}
