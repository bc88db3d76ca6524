// Package connectivity tracks whether the remote store is reachable and starts
// reconcile passes when it becomes so.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/medicnote/internal/client/gateway"
	"github.com/iudanet/medicnote/internal/client/reconcile"
	"github.com/iudanet/medicnote/internal/client/session"
)

// DefaultInterval is the probe period used when none is configured
const DefaultInterval = 30 * time.Second

// Reconciler runs one pass for an owner
type Reconciler interface {
	Reconcile(ctx context.Context, ownerID string) (reconcile.Result, error)
}

// Monitor probes the remote store and triggers a pass on each offline to
// online transition. Triggers for the same owner share one in-flight pass,
// except that every transition gets a pass started after it.
type Monitor struct {
	gateway  gateway.Gateway
	passes   Reconciler
	state    *session.State
	logger   *slog.Logger
	group    singleflight.Group
	wg       sync.WaitGroup
	interval time.Duration
}

// New creates a monitor. A non-positive interval falls back to DefaultInterval.
func New(gw gateway.Gateway, passes Reconciler, state *session.State, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		gateway:  gw,
		passes:   passes,
		state:    state,
		logger:   logger,
		interval: interval,
	}
}

// Start probes once and, if the remote store answers, triggers exactly one pass
func (m *Monitor) Start(ctx context.Context) bool {
	online := m.Probe(ctx)
	m.state.SetOnline(online)

	m.logger.Info("Connectivity at start", "online", online)
	if online {
		m.Trigger(ctx)
	}
	return online
}

// SetOnline records the observed state. Only offline to online triggers a pass.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	previous := m.state.SetOnline(online)
	if previous == online {
		return
	}

	if !online {
		m.logger.Info("Remote store unreachable, working offline")
		return
	}

	m.logger.Info("Remote store reachable again")
	// a pass still running may have stopped at the outage; the next one
	// waits for it on the owner lock
	if ownerID := m.state.OwnerID(); ownerID != "" {
		m.group.Forget(ownerID)
	}
	m.Trigger(ctx)
}

// Run probes every interval until ctx is done
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SetOnline(ctx, m.Probe(ctx))
		}
	}
}

// Probe reports whether the remote store answers its health check. An
// unauthenticated answer still counts as reachable.
func (m *Monitor) Probe(ctx context.Context) bool {
	health, err := m.gateway.HealthCheck(ctx)
	if err != nil {
		m.logger.Debug("Health check failed", "error", err)
		return false
	}
	return health.OK
}

// Trigger starts a pass for the signed-in owner in the background. A trigger
// while a pass for that owner is running joins it.
func (m *Monitor) Trigger(ctx context.Context) {
	ownerID := m.state.OwnerID()
	if ownerID == "" {
		m.logger.Debug("No session, reconcile not triggered")
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		_, err, shared := m.group.Do(ownerID, func() (any, error) {
			return m.passes.Reconcile(ctx, ownerID)
		})
		if err != nil {
			m.logger.Error("Reconcile pass failed", "owner_id", ownerID, "error", err)
			return
		}
		if shared {
			m.logger.Debug("Joined in-flight reconcile pass", "owner_id", ownerID)
		}
	}()
}

// Wait blocks until every triggered pass has returned
func (m *Monitor) Wait() {
	m.wg.Wait()
}
