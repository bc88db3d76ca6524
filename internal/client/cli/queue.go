package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/medicnote/internal/client/queue"
	"github.com/iudanet/medicnote/internal/models"
)

func newQueueCmd(get func() *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect queued changes",
	}

	var all bool
	lsCmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List queued changes",
		Args:    cobra.NoArgs,
		RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
			return c.runQueueList(cmd.Context(), all)
		}),
	}
	lsCmd.Flags().BoolVar(&all, "all", false, "include synced entries")

	cmd.AddCommand(
		lsCmd,
		&cobra.Command{
			Use:   "retry [entry-id]",
			Short: "Return failed changes to the queue",
			Long:  "Without an id every failed change of the signed-in user is retried on the next sync.",
			Args:  cobra.MaximumNArgs(1),
			RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
				var id string
				if len(args) == 1 {
					id = args[0]
				}
				return c.runQueueRetry(cmd.Context(), id)
			}),
		},
	)
	return cmd
}

func (c *Cli) runQueueList(ctx context.Context, all bool) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	entries, err := c.queue.List(ctx, c.state.OwnerID())
	if err != nil {
		return err
	}

	c.io.Println("=== Queue ===")
	c.io.Println()

	now := c.now()
	shown := 0
	for _, e := range entries {
		if !all && e.Status == models.StatusSynced {
			continue
		}
		shown++

		c.io.Printf("%s  %-7s %-6s %s/%s  age %s\n",
			e.EntryID, e.Status, e.Action, e.TargetTable, e.TargetRecordID,
			queue.Age(e, now).Round(time.Second))
		if e.Status == models.StatusFailed {
			c.io.Printf("    failed %d time(s): %s\n", e.Attempts, e.LastErrorKind)
		}
	}

	if shown == 0 {
		c.io.Println("Nothing queued.")
	}
	return nil
}

func (c *Cli) runQueueRetry(ctx context.Context, entryID string) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	if entryID != "" {
		ok, err := c.queue.Requeue(ctx, entryID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("entry %s is not failed", entryID)
		}
		c.io.Printf("✓ Entry %s queued again\n", entryID)
		return nil
	}

	n, err := c.queue.RequeueRetryable(ctx, c.state.OwnerID(), func(string) bool { return true })
	if err != nil {
		return err
	}
	c.io.Printf("✓ %d entr(ies) queued again\n", n)
	return nil
}
