package storage

import (
	"context"
	"time"

	"github.com/iudanet/medicnote/internal/models"
)

//go:generate moq -out recordstorage_mock.go . RecordStorage

// RecordStorage is the device-local durable store of records. Every failure
// other than ErrRecordNotFound is a *LocalError.
type RecordStorage interface {
	// Put upserts rec by id. Total overwrite, idempotent.
	Put(ctx context.Context, rec *models.Record) error

	// Get returns the record or ErrRecordNotFound
	Get(ctx context.Context, id string) (*models.Record, error)

	// ListByOwner returns the owner's non-deleted records, order unspecified
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Record, error)

	// ListUnsynced returns the owner's records whose last write is not known
	// to be remote, tombstones included
	ListUnsynced(ctx context.Context, ownerID string) ([]*models.Record, error)

	// SoftDelete stamps DeletedAt and UpdatedAt with at and clears Synced.
	// Returns the tombstone.
	SoftDelete(ctx context.Context, id string, at time.Time) (*models.Record, error)

	// ApplyRemote stores the remote version of a record marked as synced,
	// unless the stored copy is strictly newer. Reports whether it wrote.
	ApplyRemote(ctx context.Context, rec *models.Record) (bool, error)

	// MarkSynced sets Synced if the stored UpdatedAt equals updatedAt.
	// Reports whether it wrote.
	MarkSynced(ctx context.Context, id string, updatedAt time.Time) (bool, error)
}

// ChangeKind describes a committed local write
type ChangeKind string

const (
	ChangePut     ChangeKind = "put"
	ChangeDelete  ChangeKind = "delete"
	ChangeSynced  ChangeKind = "synced"
	ChangeApplied ChangeKind = "remote"
)

// Change is published after a write to the local store commits
type Change struct {
	OwnerID  string
	RecordID string
	Table    string
	Kind     ChangeKind
}
