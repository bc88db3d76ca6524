package api

import "time"

// Record is the wire form of a synced record. Local sync bookkeeping is not part of it.
type Record struct {
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty"`
	Fields    map[string]any `json:"fields"`
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
}

// CreateRecordRequest creates a record with a client-generated id
type CreateRecordRequest struct {
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Fields    map[string]any `json:"fields"`
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
}

// UpdateRecordRequest replaces the domain fields of a record
type UpdateRecordRequest struct {
	UpdatedAt time.Time      `json:"updated_at"`
	Fields    map[string]any `json:"fields"`
}

// ListRecordsResponse lists live records, newest first by updated_at
type ListRecordsResponse struct {
	Records []Record `json:"records"`
}

// HealthResponse is returned by the health endpoint.
// Count is set only for authenticated callers.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Count   *int   `json:"count,omitempty"`
}
