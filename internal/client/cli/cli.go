// Package cli implements the medicnote client commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/medicnote/internal/client/auth"
	"github.com/iudanet/medicnote/internal/client/connectivity"
	"github.com/iudanet/medicnote/internal/client/facade"
	"github.com/iudanet/medicnote/internal/client/gateway"
	"github.com/iudanet/medicnote/internal/client/iocli"
	"github.com/iudanet/medicnote/internal/client/notify"
	"github.com/iudanet/medicnote/internal/client/queue"
	"github.com/iudanet/medicnote/internal/client/reconcile"
	"github.com/iudanet/medicnote/internal/client/session"
	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/client/storage/boltdb"
	"github.com/iudanet/medicnote/internal/clock"
)

var errNotLoggedIn = errors.New("not authenticated. Please run 'medicnote login' first")

// ChangeFeed streams committed local writes of an owner
type ChangeFeed interface {
	Subscribe(ownerID string) (<-chan storage.Change, func())
}

// Cli holds the services the commands drive
type Cli struct {
	io         iocli.IO
	auth       *auth.Service
	records    *facade.Facade
	queue      *queue.Queue
	reconciler *reconcile.Reconciler
	monitor    *connectivity.Monitor
	state      *session.State
	reports    *notify.Broadcaster[notify.SyncReport]
	changes    ChangeFeed
	logger     *slog.Logger
	now        func() time.Time
	close      func() error
}

// components wires the sync engine over an opened local store
type components struct {
	store         *boltdb.Storage
	gateway       gateway.Gateway
	authAPI       gateway.AuthAPI
	state         *session.State
	probeInterval time.Duration
}

func newCli(io iocli.IO, deps components, logger *slog.Logger) *Cli {
	clk := clock.New()
	q := queue.New(deps.store, clk, logger)
	reports := notify.NewBroadcaster[notify.SyncReport](16)
	rec := reconcile.New(deps.store, q, deps.gateway, deps.state, reports, logger)

	return &Cli{
		io:         io,
		auth:       auth.NewService(deps.authAPI, deps.store, deps.state, logger),
		records:    facade.New(deps.store, q, deps.gateway, deps.state, clk, logger),
		queue:      q,
		reconciler: rec,
		monitor:    connectivity.New(deps.gateway, rec, deps.state, deps.probeInterval, logger),
		state:      deps.state,
		reports:    reports,
		changes:    deps.store,
		logger:     logger,
		now:        time.Now,
		close: func() error {
			reports.Close()
			return nil
		},
	}
}

// Close waits for background writes and releases resources
func (c *Cli) Close() error {
	c.records.Wait()
	c.monitor.Wait()
	if c.close != nil {
		return c.close()
	}
	return nil
}

// requireSession activates the stored session. An expired session still
// allows local work.
func (c *Cli) requireSession(ctx context.Context) error {
	_, err := c.auth.Restore(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrAuthNotFound):
		return errNotLoggedIn
	case errors.Is(err, auth.ErrSessionExpired):
		c.io.Println("Warning: session expired. Changes are saved locally until you login again.")
		return nil
	default:
		return fmt.Errorf("failed to load session: %w", err)
	}
}

// connect probes the server and records the result without starting a pass
func (c *Cli) connect(ctx context.Context) bool {
	online := c.monitor.Probe(ctx)
	c.state.SetOnline(online)
	return online
}

// describeTask prints where a write ended up
func (c *Cli) describeTask(ctx context.Context, task *facade.Task) {
	if task == nil {
		return
	}
	if err := task.QueueErr(); err != nil {
		c.io.Printf("Warning: failed to queue change (%v). It will be recovered on the next sync.\n", err)
	}

	err := task.Wait(ctx)
	switch {
	case err == nil:
		c.io.Println("✓ Synced with server")
	case errors.Is(err, session.ErrOffline):
		c.io.Println("Server unreachable, change queued for sync")
	default:
		c.io.Printf("Server write failed (%v), change queued for sync\n", err)
	}
}
