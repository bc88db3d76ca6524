package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/medicnote/internal/models"
	"github.com/iudanet/medicnote/internal/server/storage"
)

const recordColumns = `id, table_name, owner_id, fields, created_at, updated_at, deleted_at`

// CreateRecord inserts rec with its client-assigned id and timestamps
func (s *Storage) CreateRecord(ctx context.Context, rec *models.Record) error {
	fields, err := encodeFields(rec.Fields)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Table,
		rec.OwnerID,
		fields,
		rec.CreatedAt.UnixNano(),
		rec.UpdatedAt.UnixNano(),
		nullTime(rec.DeletedAt),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrRecordExists
		}
		return fmt.Errorf("failed to insert record: %w", err)
	}

	return nil
}

// GetRecord retrieves a record of the owner, tombstones included
func (s *Storage) GetRecord(ctx context.Context, table, ownerID, id string) (*models.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE id = ? AND table_name = ? AND owner_id = ?
	`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, id, table, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return rec, nil
}

// ListRecords retrieves live records of the owner, newest first
func (s *Storage) ListRecords(ctx context.Context, table, ownerID string) ([]*models.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE table_name = ? AND owner_id = ? AND deleted_at IS NULL
		ORDER BY updated_at DESC, id
	`

	rows, err := s.db.QueryContext(ctx, query, table, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := make([]*models.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// UpdateRecord replaces the fields of a live record
func (s *Storage) UpdateRecord(ctx context.Context, table, ownerID, id string, fields map[string]any, updatedAt time.Time) (*models.Record, error) {
	encoded, err := encodeFields(fields)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rec, err := s.getForWrite(ctx, tx, table, ownerID, id)
	if err != nil {
		return nil, err
	}
	if rec.UpdatedAt.UnixNano() > updatedAt.UnixNano() {
		// an older write arriving late leaves the stored version in place
		return rec, nil
	}

	query := `UPDATE records SET fields = ?, updated_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, encoded, updatedAt.UnixNano(), id); err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	rec.Fields = fields
	rec.UpdatedAt = time.Unix(0, updatedAt.UnixNano()).UTC()
	return rec, nil
}

// SoftDeleteRecord tombstones a record; a second delete keeps the first deleted_at
func (s *Storage) SoftDeleteRecord(ctx context.Context, table, ownerID, id string, deletedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := s.getForWrite(ctx, tx, table, ownerID, id); err != nil {
		if errors.Is(err, storage.ErrRecordDeleted) {
			return nil
		}
		return err
	}

	query := `UPDATE records SET deleted_at = ?, updated_at = MAX(updated_at, ?) WHERE id = ?`
	if _, err := tx.ExecContext(ctx, query, deletedAt.UnixNano(), deletedAt.UnixNano(), id); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CountRecords counts live records of the owner
func (s *Storage) CountRecords(ctx context.Context, ownerID string) (int, error) {
	query := `SELECT COUNT(*) FROM records WHERE owner_id = ? AND deleted_at IS NULL`

	var count int
	if err := s.db.QueryRowContext(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

func (s *Storage) getForWrite(ctx context.Context, tx *sql.Tx, table, ownerID, id string) (*models.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM records
		WHERE id = ? AND table_name = ? AND owner_id = ?
	`

	rec, err := scanRecord(tx.QueryRowContext(ctx, query, id, table, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	if rec.IsDeleted() {
		return nil, storage.ErrRecordDeleted
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.Record, error) {
	rec := &models.Record{}
	var (
		fields               string
		createdAt, updatedAt int64
		deletedAt            sql.NullInt64
	)

	if err := row.Scan(
		&rec.ID,
		&rec.Table,
		&rec.OwnerID,
		&fields,
		&createdAt,
		&updatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields of %s: %w", rec.ID, err)
	}

	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	rec.UpdatedAt = time.Unix(0, updatedAt).UTC()
	if deletedAt.Valid {
		t := time.Unix(0, deletedAt.Int64).UTC()
		rec.DeletedAt = &t
	}

	return rec, nil
}

func encodeFields(fields map[string]any) (string, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode fields: %w", err)
	}
	return string(data), nil
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}
