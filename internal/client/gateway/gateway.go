// Package gateway is the client side of the remote store of record.
package gateway

import (
	"context"
	"time"

	"github.com/iudanet/medicnote/internal/models"
	"github.com/iudanet/medicnote/pkg/api"
)

//go:generate moq -out gateway_mock.go . Gateway

// Gateway is the remote CRUD contract used by the sync engine. Every error is
// a *RemoteError. Implementations bound each call with their own timeout.
type Gateway interface {
	// HealthCheck probes reachability. A reachable server that rejects the
	// session still reports OK.
	HealthCheck(ctx context.Context) (*Health, error)

	// Create stores a new record under its client-generated id.
	// An existing id is a Rejected conflict, see IsConflict.
	Create(ctx context.Context, table string, rec *models.Record) (*models.Record, error)

	// Fetch returns the live remote record, or NotFound if it is missing or deleted
	Fetch(ctx context.Context, table, id string) (*models.Record, error)

	// FetchAll returns the owner's live records, newest first by UpdatedAt
	FetchAll(ctx context.Context, table, ownerID string) ([]*models.Record, error)

	// Update replaces the domain fields of a live record
	Update(ctx context.Context, table, id string, fields map[string]any, updatedAt time.Time) (*models.Record, error)

	// SoftDelete tombstones a record. Deleting a tombstone succeeds.
	SoftDelete(ctx context.Context, table, id string, deletedAt time.Time) error
}

//go:generate moq -out authapi_mock.go . AuthAPI

// AuthAPI issues sessions
type AuthAPI interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)
}

// Health is the result of a reachability probe
type Health struct {
	Count         *int   // live record count of the caller, when authenticated
	Version       string // server version
	OK            bool   // server answered
	Authenticated bool   // session was accepted
}

// TokenSource supplies the current access token. session.State implements it.
type TokenSource interface {
	Token() string
}
