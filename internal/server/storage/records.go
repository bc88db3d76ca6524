package storage

import (
	"context"
	"time"

	"github.com/iudanet/medicnote/internal/models"
)

// RecordStorage is the store of record for synced tables. Every call is
// scoped to one owner; records of other owners behave as missing.
type RecordStorage interface {
	// CreateRecord inserts rec as given, keeping the client's id and timestamps.
	// Returns ErrRecordExists if the id is taken, even by a tombstone.
	CreateRecord(ctx context.Context, rec *models.Record) error

	// GetRecord returns the record, tombstones included.
	// Returns ErrRecordNotFound if the owner has no record with id in table.
	GetRecord(ctx context.Context, table, ownerID, id string) (*models.Record, error)

	// ListRecords returns live records of the owner, newest first by updated_at
	ListRecords(ctx context.Context, table, ownerID string) ([]*models.Record, error)

	// UpdateRecord replaces the fields and updated_at of a live record unless
	// the stored updated_at is later, in which case the stored record is
	// returned unchanged. Returns ErrRecordNotFound or ErrRecordDeleted.
	UpdateRecord(ctx context.Context, table, ownerID, id string, fields map[string]any, updatedAt time.Time) (*models.Record, error)

	// SoftDeleteRecord tombstones a record. Deleting a tombstone is a no-op.
	// Returns ErrRecordNotFound if the record never existed.
	SoftDeleteRecord(ctx context.Context, table, ownerID, id string, deletedAt time.Time) error

	// CountRecords counts live records of the owner across all tables
	CountRecords(ctx context.Context, ownerID string) (int, error)
}
