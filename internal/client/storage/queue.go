package storage

import (
	"context"

	"github.com/iudanet/medicnote/internal/models"
)

//go:generate moq -out queuestorage_mock.go . QueueStorage

// QueueStorage persists mutation entries. Each call is atomic: an entry and
// its indexes are written fully or not at all.
type QueueStorage interface {
	// AppendEntry stores a new entry. Returns ErrEntryExists for a duplicate id.
	AppendEntry(ctx context.Context, entry *models.MutationEntry) error

	// GetEntry returns the entry or ErrEntryNotFound
	GetEntry(ctx context.Context, entryID string) (*models.MutationEntry, error)

	// ListEntries returns every entry of the owner regardless of status
	ListEntries(ctx context.Context, ownerID string) ([]*models.MutationEntry, error)

	// ListPendingEntries returns the owner's pending entries ordered by
	// CreatedAt, then EntryID
	ListPendingEntries(ctx context.Context, ownerID string) ([]*models.MutationEntry, error)

	// UpdateEntry loads the entry, lets fn modify it and writes it back with
	// its indexes if fn returns true. Payload changes made by fn are discarded.
	UpdateEntry(ctx context.Context, entryID string, fn func(entry *models.MutationEntry) bool) (*models.MutationEntry, error)
}
