package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/iudanet/medicnote/internal/client/notify"
	"github.com/iudanet/medicnote/internal/client/session"
)

func newRunCmd(get func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Stay running and sync whenever the server is reachable",
		Args:  cobra.NoArgs,
		RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
			return c.runDaemon(cmd.Context())
		}),
	}
}

// runDaemon merges with the server once, then follows connectivity and
// prints every pass and local change until ctx is cancelled
func (c *Cli) runDaemon(ctx context.Context) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}
	ownerID := c.state.OwnerID()

	reports, stopReports := c.reports.Subscribe(func(r notify.SyncReport) bool { return r.OwnerID == ownerID })
	defer stopReports()
	changes, stopChanges := c.changes.Subscribe(ownerID)
	defer stopChanges()

	if c.connect(ctx) {
		result, err := c.records.MergeOnInit(ctx)
		switch {
		case err == nil:
			c.io.Printf("Merged with server: %d pulled, %d pushed, %d removed\n", result.Pulled, result.Pushed, result.Tombstoned)
		case errors.Is(err, session.ErrOffline):
		default:
			c.io.Printf("Warning: merge with server incomplete: %v\n", err)
		}
	}

	if c.monitor.Start(ctx) {
		c.io.Println("Server reachable")
	} else {
		c.io.Println("Server unreachable, working offline")
	}

	runCtx, cancel := context.WithCancel(ctx)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		c.monitor.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-runDone
	}()

	for {
		select {
		case <-ctx.Done():
			c.io.Println("Stopping")
			return nil
		case r, ok := <-reports:
			if !ok {
				return nil
			}
			c.io.Printf("sync: %d pushed, %d failed, %d deferred\n", r.Processed, r.Failed, r.Deferred)
		case ch, ok := <-changes:
			if !ok {
				return nil
			}
			c.io.Printf("local: %s %s/%s\n", ch.Kind, ch.Table, ch.RecordID)
		}
	}
}
