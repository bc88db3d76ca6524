package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/medicnote/internal/models"
)

func newSyncCmd(get func() *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push queued changes to the server",
		Args:  cobra.NoArgs,
		RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
			return c.runSync(cmd.Context())
		}),
	}
}

func (c *Cli) runSync(ctx context.Context) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}
	ownerID := c.state.OwnerID()

	c.io.Println("=== Synchronization ===")
	c.io.Println()

	if !c.connect(ctx) {
		stats, err := c.queue.Stats(ctx, ownerID)
		if err != nil {
			return err
		}
		c.io.Printf("Server unreachable. %d change(s) stay queued.\n", stats[models.StatusPending]+stats[models.StatusFailed])
		return nil
	}

	result, err := c.reconciler.Reconcile(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	c.io.Println("✓ Synchronization finished")
	c.io.Println()
	c.io.Printf("Pushed:   %d change(s)\n", result.Processed)
	if result.Failed > 0 {
		c.io.Printf("Failed:   %d change(s). See 'medicnote queue ls'.\n", result.Failed)
	}
	if result.Deferred > 0 {
		c.io.Printf("Deferred: %d change(s), retried on the next sync\n", result.Deferred)
	}
	return nil
}
