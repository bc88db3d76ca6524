package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/medicnote/internal/models"
)

type trainingOptions struct {
	module    string
	completed string
	score     float64
}

func newTrainingCmd(get func() *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "training",
		Short: "Record completed training modules",
	}

	var add trainingOptions
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a completed module",
		Args:  cobra.NoArgs,
		RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
			return c.runTrainingAdd(cmd.Context(), add)
		}),
	}
	addCmd.Flags().StringVar(&add.module, "module", "", "training module identifier")
	addCmd.Flags().Float64Var(&add.score, "score", 100, "score in percent")
	addCmd.Flags().StringVar(&add.completed, "completed", "", "completion time, RFC3339 (default now)")
	_ = addCmd.MarkFlagRequired("module")

	cmd.AddCommand(
		addCmd,
		&cobra.Command{
			Use:     "ls",
			Aliases: []string{"list"},
			Short:   "List completed modules",
			Args:    cobra.NoArgs,
			RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
				return c.runTrainingList(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a completion",
			Args:  cobra.ExactArgs(1),
			RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
				return c.runDelete(cmd.Context(), models.TableTrainingCompletions, args[0])
			}),
		},
	)
	return cmd
}

func (c *Cli) runTrainingAdd(ctx context.Context, opts trainingOptions) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}
	if opts.score < 0 || opts.score > 100 {
		return fmt.Errorf("score must be between 0 and 100")
	}

	completedAt := c.now()
	if opts.completed != "" {
		t, err := time.Parse(time.RFC3339, opts.completed)
		if err != nil {
			return fmt.Errorf("invalid completion time: %w", err)
		}
		completedAt = t
	}

	c.connect(ctx)
	tc := models.TrainingCompletion{Module: opts.module, Score: opts.score, CompletedAt: completedAt}
	rec, task, err := c.records.Create(ctx, models.TableTrainingCompletions, tc.Fields())
	if err != nil {
		return fmt.Errorf("failed to save training completion: %w", err)
	}

	c.io.Printf("✓ Training completion saved: %s\n", rec.ID)
	c.describeTask(ctx, task)
	return nil
}

func (c *Cli) runTrainingList(ctx context.Context) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	recs, err := c.records.List(ctx, models.TableTrainingCompletions)
	if err != nil {
		return fmt.Errorf("failed to list training completions: %w", err)
	}

	c.io.Println("=== Training Completions ===")
	if len(recs) == 0 {
		c.io.Println()
		c.io.Println("No training completions found.")
		return nil
	}

	for _, rec := range recs {
		tc, err := models.TrainingCompletionFromRecord(rec)
		if err != nil {
			return err
		}
		if err := templates.ExecuteTemplate(c.io, "training", trainingView{
			ID:          rec.ID,
			Module:      tc.Module,
			Score:       tc.Score,
			CompletedAt: tc.CompletedAt,
			Synced:      rec.Synced,
		}); err != nil {
			return err
		}
	}
	return nil
}
