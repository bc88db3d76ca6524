package models

import (
	"fmt"
	"time"
)

// Note is a clinical note kept in the notes table.
type Note struct {
	Text    string `json:"text"`    // note body
	Patient string `json:"patient"` // patient reference, free-form
	Author  string `json:"author"`  // clinician who wrote the note
}

// Fields converts the note into record fields.
func (n Note) Fields() map[string]any {
	return map[string]any{
		"text":    n.Text,
		"patient": n.Patient,
		"author":  n.Author,
	}
}

// NoteFromRecord reads note fields out of rec.
func NoteFromRecord(rec *Record) (Note, error) {
	if rec.Table != TableNotes {
		return Note{}, fmt.Errorf("record %s belongs to table %q, not %q", rec.ID, rec.Table, TableNotes)
	}
	return Note{
		Text:    stringField(rec.Fields, "text"),
		Patient: stringField(rec.Fields, "patient"),
		Author:  stringField(rec.Fields, "author"),
	}, nil
}

// TrainingCompletion records that a user finished a training module.
type TrainingCompletion struct {
	CompletedAt time.Time `json:"completed_at"` // when the module was completed
	Module      string    `json:"module"`       // training module identifier
	Score       float64   `json:"score"`        // score in percent
}

// Fields converts the completion into record fields.
func (tc TrainingCompletion) Fields() map[string]any {
	return map[string]any{
		"module":       tc.Module,
		"score":        tc.Score,
		"completed_at": tc.CompletedAt.UTC().Format(time.RFC3339),
	}
}

// TrainingCompletionFromRecord reads completion fields out of rec.
func TrainingCompletionFromRecord(rec *Record) (TrainingCompletion, error) {
	if rec.Table != TableTrainingCompletions {
		return TrainingCompletion{}, fmt.Errorf("record %s belongs to table %q, not %q", rec.ID, rec.Table, TableTrainingCompletions)
	}
	tc := TrainingCompletion{
		Module: stringField(rec.Fields, "module"),
	}
	if score, ok := rec.Fields["score"].(float64); ok {
		tc.Score = score
	}
	if raw := stringField(rec.Fields, "completed_at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return tc, fmt.Errorf("invalid completed_at %q: %w", raw, err)
		}
		tc.CompletedAt = t
	}
	return tc, nil
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return v
}
