package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Clone(t *testing.T) {
	deleted := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	original := &Record{
		ID:        "rec-1",
		OwnerID:   "user-1",
		Table:     TableNotes,
		Fields:    map[string]any{"text": "fever"},
		DeletedAt: &deleted,
	}

	clone := original.Clone()
	require.Equal(t, original, clone)

	clone.Fields["text"] = "changed"
	*clone.DeletedAt = deleted.Add(time.Hour)

	assert.Equal(t, "fever", original.Fields["text"])
	assert.Equal(t, deleted, *original.DeletedAt)
}

func TestRecord_IsDeleted(t *testing.T) {
	now := time.Now()
	assert.False(t, (&Record{}).IsDeleted())
	assert.True(t, (&Record{DeletedAt: &now}).IsDeleted())
}

func TestIsKnownTable(t *testing.T) {
	tests := []struct {
		name  string
		table string
		want  bool
	}{
		{name: "notes", table: TableNotes, want: true},
		{name: "training", table: TableTrainingCompletions, want: true},
		{name: "unknown", table: "patients", want: false},
		{name: "empty", table: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsKnownTable(tt.table))
		})
	}
}

func TestMutationPayload_Record(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := &Record{
		ID:        "n1",
		OwnerID:   "u1",
		Table:     TableNotes,
		Fields:    map[string]any{"text": "fever"},
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
	}

	raw, err := EncodePayload(PayloadFromRecord(rec))
	require.NoError(t, err)

	entry := &MutationEntry{
		EntryID:        "e1",
		OwnerID:        "u1",
		Action:         ActionCreate,
		TargetTable:    TableNotes,
		TargetRecordID: "n1",
		Payload:        raw,
	}

	payload, err := entry.DecodePayload()
	require.NoError(t, err)

	got := payload.Record(entry)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.OwnerID, got.OwnerID)
	assert.Equal(t, rec.Table, got.Table)
	assert.Equal(t, "fever", got.Fields["text"])
	assert.True(t, rec.UpdatedAt.Equal(got.UpdatedAt))
	assert.Nil(t, got.DeletedAt)
}

func TestMutationEntry_DecodePayloadInvalid(t *testing.T) {
	entry := &MutationEntry{EntryID: "e1", Payload: []byte("{not json")}
	_, err := entry.DecodePayload()
	assert.Error(t, err)
}

func TestEntryStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusSynced.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestNoteFromRecord(t *testing.T) {
	note := Note{Text: "fever", Patient: "bed 4", Author: "dr. ivanova"}
	rec := &Record{ID: "n1", Table: TableNotes, Fields: note.Fields()}

	got, err := NoteFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, note, got)

	_, err = NoteFromRecord(&Record{ID: "t1", Table: TableTrainingCompletions})
	assert.Error(t, err)
}

func TestTrainingCompletionFromRecord(t *testing.T) {
	tc := TrainingCompletion{
		Module:      "hand-hygiene",
		Score:       92.5,
		CompletedAt: time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
	}
	rec := &Record{ID: "t1", Table: TableTrainingCompletions, Fields: tc.Fields()}

	got, err := TrainingCompletionFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, tc.Module, got.Module)
	assert.Equal(t, tc.Score, got.Score)
	assert.True(t, tc.CompletedAt.Equal(got.CompletedAt))

	rec.Fields["completed_at"] = "yesterday"
	_, err = TrainingCompletionFromRecord(rec)
	assert.Error(t, err)
}
