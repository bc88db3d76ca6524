package models

import (
	"time"
)

// Table names known to the sync engine.
const (
	TableNotes               = "notes"
	TableTrainingCompletions = "training_completions"
)

// Tables lists every synced table in a stable order.
var Tables = []string{TableNotes, TableTrainingCompletions}

// IsKnownTable reports whether name is a synced table.
func IsKnownTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

// Record is a user-authored document stored locally and mirrored remotely.
// Synced is local bookkeeping and is never put on the wire.
type Record struct {
	CreatedAt time.Time      `json:"created_at"`           // when the record was first written on any device
	UpdatedAt time.Time      `json:"updated_at"`           // LWW freshness marker, non-decreasing per device
	DeletedAt *time.Time     `json:"deleted_at,omitempty"` // tombstone marker; records are never hard-deleted
	Fields    map[string]any `json:"fields"`               // domain fields
	ID        string         `json:"id"`                   // UUID, generated on the device that created the record
	OwnerID   string         `json:"owner_id"`             // authenticated user that owns the record
	Table     string         `json:"table"`                // notes | training_completions
	Synced    bool           `json:"synced"`               // last local write is known to be present remotely
}

// IsDeleted reports whether the record is a tombstone.
func (r *Record) IsDeleted() bool {
	return r.DeletedAt != nil
}

// Clone returns a deep copy of the record. Field values are copied shallowly.
func (r *Record) Clone() *Record {
	c := *r
	if r.DeletedAt != nil {
		d := *r.DeletedAt
		c.DeletedAt = &d
	}
	if r.Fields != nil {
		c.Fields = make(map[string]any, len(r.Fields))
		for k, v := range r.Fields {
			c.Fields[k] = v
		}
	}
	return &c
}
