// Package gatewaytest provides an in-memory remote store for tests.
package gatewaytest

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/iudanet/medicnote/internal/client/gateway"
	"github.com/iudanet/medicnote/internal/models"
)

// Memory is an in-memory store of record served through a GatewayMock, so
// tests get both realistic behaviour and call tracking.
type Memory struct {
	records map[string]*models.Record
	fail    func(op, id string) error
	mu      sync.Mutex
}

// NewMemory creates an empty remote store
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*models.Record)}
}

// FailWith installs an error hook consulted before every call. op is one of
// health, create, fetch, fetch all, update, delete; id is the record id (the
// table for fetch all). A nil return lets the call through.
func (f *Memory) FailWith(fn func(op, id string) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fn
}

func (f *Memory) injected(op, id string) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail == nil {
		return nil
	}
	return fail(op, id)
}

// Get returns a copy of the stored record, tombstones included
func (f *Memory) Get(id string) *models.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[id]; ok {
		return rec.Clone()
	}
	return nil
}

// Put stores a copy of rec directly, bypassing the gateway
func (f *Memory) Put(rec *models.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := rec.Clone()
	c.Synced = false
	f.records[rec.ID] = c
}

// Len counts stored records, tombstones included
func (f *Memory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// Network returns a transport failure for op
func Network(op string) error {
	return &gateway.RemoteError{Op: op, Kind: gateway.KindNetwork}
}

func notFound(op string) error {
	return &gateway.RemoteError{Op: op, Kind: gateway.KindNotFound, StatusCode: http.StatusNotFound}
}

// Mock returns a gateway backed by the store
func (f *Memory) Mock() *gateway.GatewayMock {
	return &gateway.GatewayMock{
		HealthCheckFunc: func(ctx context.Context) (*gateway.Health, error) {
			if err := f.injected("health", ""); err != nil {
				return nil, err
			}
			return &gateway.Health{OK: true}, nil
		},
		CreateFunc: func(ctx context.Context, table string, rec *models.Record) (*models.Record, error) {
			if err := f.injected("create", rec.ID); err != nil {
				return nil, err
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			if _, ok := f.records[rec.ID]; ok {
				return nil, &gateway.RemoteError{Op: "create", Kind: gateway.KindRejected, StatusCode: http.StatusConflict}
			}
			c := rec.Clone()
			c.Synced = false
			c.DeletedAt = nil
			f.records[rec.ID] = c
			return c.Clone(), nil
		},
		FetchFunc: func(ctx context.Context, table, id string) (*models.Record, error) {
			if err := f.injected("fetch", id); err != nil {
				return nil, err
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			rec, ok := f.records[id]
			if !ok || rec.IsDeleted() {
				return nil, notFound("fetch")
			}
			return rec.Clone(), nil
		},
		FetchAllFunc: func(ctx context.Context, table, ownerID string) ([]*models.Record, error) {
			if err := f.injected("fetch all", table); err != nil {
				return nil, err
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			var out []*models.Record
			for _, rec := range f.records {
				if rec.Table == table && rec.OwnerID == ownerID && !rec.IsDeleted() {
					out = append(out, rec.Clone())
				}
			}
			sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
			return out, nil
		},
		UpdateFunc: func(ctx context.Context, table, id string, fields map[string]any, updatedAt time.Time) (*models.Record, error) {
			if err := f.injected("update", id); err != nil {
				return nil, err
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			rec, ok := f.records[id]
			if !ok || rec.IsDeleted() {
				return nil, notFound("update")
			}
			if rec.UpdatedAt.After(updatedAt) {
				return rec.Clone(), nil
			}
			rec.Fields = fields
			rec.UpdatedAt = updatedAt
			return rec.Clone(), nil
		},
		SoftDeleteFunc: func(ctx context.Context, table, id string, deletedAt time.Time) error {
			if err := f.injected("delete", id); err != nil {
				return err
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			rec, ok := f.records[id]
			if !ok {
				return notFound("soft delete")
			}
			if !rec.IsDeleted() {
				d := deletedAt
				rec.DeletedAt = &d
				rec.UpdatedAt = deletedAt
			}
			return nil
		},
	}
}
