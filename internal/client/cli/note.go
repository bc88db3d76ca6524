package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/medicnote/internal/client/storage"
	"github.com/iudanet/medicnote/internal/models"
)

type noteOptions struct {
	text    string
	patient string
	author  string
}

func newNoteCmd(get func() *Cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage clinical notes",
	}

	var add noteOptions
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Write a new note",
		Args:  cobra.NoArgs,
		RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
			return c.runNoteAdd(cmd.Context(), add)
		}),
	}
	addCmd.Flags().StringVar(&add.text, "text", "", "note text (prompted if empty)")
	addCmd.Flags().StringVar(&add.patient, "patient", "", "patient reference")
	addCmd.Flags().StringVar(&add.author, "author", "", "author (defaults to the signed-in user)")

	var edit noteOptions
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a note",
		Args:  cobra.ExactArgs(1),
		RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
			flags := cmd.Flags()
			return c.runNoteEdit(cmd.Context(), args[0], edit, flags.Changed("text"), flags.Changed("patient"))
		}),
	}
	editCmd.Flags().StringVar(&edit.text, "text", "", "new note text")
	editCmd.Flags().StringVar(&edit.patient, "patient", "", "new patient reference")

	cmd.AddCommand(
		addCmd,
		editCmd,
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "Delete a note",
			Args:    cobra.ExactArgs(1),
			RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
				return c.runDelete(cmd.Context(), models.TableNotes, args[0])
			}),
		},
		&cobra.Command{
			Use:     "ls",
			Aliases: []string{"list"},
			Short:   "List notes, newest first",
			Args:    cobra.NoArgs,
			RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
				return c.runNoteList(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:     "show <id>",
			Aliases: []string{"get"},
			Short:   "Show a note",
			Args:    cobra.ExactArgs(1),
			RunE: runE(get, func(cmd *cobra.Command, c *Cli, args []string) error {
				return c.runNoteShow(cmd.Context(), args[0])
			}),
		},
	)
	return cmd
}

func (c *Cli) runNoteAdd(ctx context.Context, opts noteOptions) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	text := opts.text
	if text == "" {
		var err error
		if text, err = c.io.ReadInput("Text: "); err != nil {
			return fmt.Errorf("failed to read text: %w", err)
		}
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("note text cannot be empty")
	}

	author := opts.author
	if author == "" {
		author = c.state.Username()
	}

	c.connect(ctx)
	note := models.Note{Text: text, Patient: opts.patient, Author: author}
	rec, task, err := c.records.Create(ctx, models.TableNotes, note.Fields())
	if err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}

	c.io.Printf("✓ Note saved: %s\n", rec.ID)
	c.describeTask(ctx, task)
	return nil
}

func (c *Cli) runNoteEdit(ctx context.Context, id string, opts noteOptions, textSet, patientSet bool) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}
	if !textSet && !patientSet {
		return fmt.Errorf("nothing to change. Use --text or --patient")
	}

	rec, err := c.lookup(ctx, models.TableNotes, id)
	if err != nil {
		return err
	}
	note, err := models.NoteFromRecord(rec)
	if err != nil {
		return err
	}
	if textSet {
		note.Text = opts.text
	}
	if patientSet {
		note.Patient = opts.patient
	}

	c.connect(ctx)
	_, task, err := c.records.Update(ctx, id, note.Fields())
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	c.io.Printf("✓ Note updated: %s\n", id)
	c.describeTask(ctx, task)
	return nil
}

func (c *Cli) runDelete(ctx context.Context, table, id string) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}
	if _, err := c.lookup(ctx, table, id); err != nil {
		return err
	}

	c.connect(ctx)
	task, err := c.records.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	c.io.Printf("✓ Deleted: %s\n", id)
	c.describeTask(ctx, task)
	return nil
}

func (c *Cli) runNoteList(ctx context.Context) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	notes, err := c.records.List(ctx, models.TableNotes)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}

	c.io.Println("=== Notes ===")
	c.io.Println()
	if len(notes) == 0 {
		c.io.Println("No notes found.")
		c.io.Println("Use 'medicnote note add' to write your first note.")
		return nil
	}

	c.io.Printf("Found %d note(s):\n", len(notes))
	c.io.Println()
	for i, rec := range notes {
		note, err := models.NoteFromRecord(rec)
		if err != nil {
			return err
		}
		c.io.Printf("%d. %s%s\n", i+1, summary(note.Text, 60), syncMarker(rec))
		c.io.Printf("   ID:      %s\n", rec.ID)
		if note.Patient != "" {
			c.io.Printf("   Patient: %s\n", note.Patient)
		}
		c.io.Printf("   Updated: %s\n", rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (c *Cli) runNoteShow(ctx context.Context, id string) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	rec, err := c.lookup(ctx, models.TableNotes, id)
	if err != nil {
		return err
	}
	note, err := models.NoteFromRecord(rec)
	if err != nil {
		return err
	}

	return templates.ExecuteTemplate(c.io, "note", noteView{
		ID:        rec.ID,
		Patient:   note.Patient,
		Author:    note.Author,
		Text:      note.Text,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Synced:    rec.Synced,
	})
}

// lookup returns a live record of table from the local store
func (c *Cli) lookup(ctx context.Context, table, id string) (*models.Record, error) {
	rec, err := c.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, fmt.Errorf("no record with id %s", id)
		}
		return nil, err
	}
	if rec.Table != table {
		return nil, fmt.Errorf("record %s is not in %s", id, table)
	}
	return rec, nil
}

func summary(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}

func syncMarker(rec *models.Record) string {
	if rec.Synced {
		return ""
	}
	return " (not synced)"
}
