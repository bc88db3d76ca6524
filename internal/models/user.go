package models

import "time"

// User is an account on the remote store.
type User struct {
	CreatedAt    time.Time `json:"created_at"`    // registration time
	UpdatedAt    time.Time `json:"updated_at"`    // last update time
	ID           string    `json:"id"`            // user UUID, becomes the owner id of records
	Username     string    `json:"username"`      // unique username
	PasswordHash string    `json:"password_hash"` // bcrypt hash of the password
}
