package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is the kind of change a mutation entry carries.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// EntryStatus is the lifecycle state of a mutation entry.
type EntryStatus string

const (
	StatusPending EntryStatus = "pending"
	StatusSynced  EntryStatus = "synced"
	StatusFailed  EntryStatus = "failed"
)

// IsTerminal reports whether no further transition happens without an explicit requeue.
func (s EntryStatus) IsTerminal() bool {
	return s == StatusSynced || s == StatusFailed
}

// MutationEntry is an intent to apply one local change to the remote store.
// Payload is written once at enqueue time and never modified.
type MutationEntry struct {
	CreatedAt      time.Time       `json:"created_at"`                // enqueue time, primary ordering key
	SyncedAt       *time.Time      `json:"synced_at,omitempty"`       // set once the entry reaches synced
	EntryID        string          `json:"entry_id"`                  // UUIDv7, tie-breaker for ordering
	OwnerID        string          `json:"owner_id"`                  // owner of the target record
	Action         Action          `json:"action"`                    // create | update | delete
	TargetTable    string          `json:"target_table"`              // table of the target record
	TargetRecordID string          `json:"target_record_id"`          // id of the target record
	Status         EntryStatus     `json:"status"`                    // pending | synced | failed
	LastErrorKind  string          `json:"last_error_kind,omitempty"` // error kind of the last failed attempt
	Payload        json.RawMessage `json:"payload"`                   // encoded MutationPayload
	Attempts       int             `json:"attempts"`                  // number of failed dispatch attempts
}

// MutationPayload is the snapshot of a record taken when the change was made.
type MutationPayload struct {
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// PayloadFromRecord snapshots the parts of rec that travel with a mutation.
func PayloadFromRecord(rec *Record) MutationPayload {
	c := rec.Clone()
	return MutationPayload{
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		DeletedAt: c.DeletedAt,
		Fields:    c.Fields,
	}
}

// EncodePayload marshals p for storage in MutationEntry.Payload.
func EncodePayload(p MutationPayload) (json.RawMessage, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mutation payload: %w", err)
	}
	return data, nil
}

// DecodePayload unmarshals the entry payload.
func (e *MutationEntry) DecodePayload() (MutationPayload, error) {
	var p MutationPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal payload of entry %s: %w", e.EntryID, err)
	}
	return p, nil
}

// Record rebuilds the record the payload was taken from.
func (p MutationPayload) Record(e *MutationEntry) *Record {
	return &Record{
		ID:        e.TargetRecordID,
		OwnerID:   e.OwnerID,
		Table:     e.TargetTable,
		Fields:    p.Fields,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		DeletedAt: p.DeletedAt,
	}
}
