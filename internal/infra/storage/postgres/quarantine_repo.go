package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"firegate/internal/core/domain"
	"firegate/internal/infra/storage"
)

// QuarantineRepo implements storage.QuarantineRepository using PostgreSQL.
type QuarantineRepo struct {
	db *DB
}

// NewQuarantineRepo creates a new PostgreSQL quarantine repository.
func NewQuarantineRepo(db *DB) *QuarantineRepo {
	return &QuarantineRepo{db: db}
}

// Add quarantines each record of the batch under one error record.
func (r *QuarantineRepo) Add(ctx context.Context, source string, records domain.Batch, rec domain.ErrorRecord) error {
	query := `
		INSERT INTO quarantine_records (id, source, error_id, error_type, reason, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		_, err = tx.ExecContext(
			ctx,
			query,
			uuid.New().String(),
			source,
			rec.ErrorID,
			rec.ErrorType,
			rec.Message,
			payload,
			rec.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to add quarantine record: %w", err)
		}
	}

	return tx.Commit()
}

// GetPending returns unreleased quarantine rows for a source.
func (r *QuarantineRepo) GetPending(ctx context.Context, source string) ([]*storage.QuarantineRow, error) {
	query := `
		SELECT id, source, error_id, error_type, reason, payload, created_at, released
		FROM quarantine_records
		WHERE source = $1 AND NOT released
		ORDER BY created_at ASC
	`

	var rows []struct {
		ID        string    `db:"id"`
		Source    string    `db:"source"`
		ErrorID   string    `db:"error_id"`
		ErrorType string    `db:"error_type"`
		Reason    string    `db:"reason"`
		Payload   []byte    `db:"payload"`
		CreatedAt time.Time `db:"created_at"`
		Released  bool      `db:"released"`
	}

	if err := r.db.SelectContext(ctx, &rows, query, source); err != nil {
		return nil, fmt.Errorf("failed to get pending quarantine records: %w", err)
	}

	var out []*storage.QuarantineRow
	for _, row := range rows {
		var record domain.Record
		if err := json.Unmarshal(row.Payload, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}
		out = append(out, &storage.QuarantineRow{
			ID:        row.ID,
			Source:    row.Source,
			ErrorID:   row.ErrorID,
			ErrorType: row.ErrorType,
			Reason:    row.Reason,
			Payload:   record,
			CreatedAt: row.CreatedAt,
			Released:  row.Released,
		})
	}
	return out, nil
}

// Release marks a quarantine row as handled.
func (r *QuarantineRepo) Release(ctx context.Context, id string) error {
	query := `
		UPDATE quarantine_records
		SET released = TRUE
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to release quarantine record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Count returns the number of unreleased rows for a source.
func (r *QuarantineRepo) Count(ctx context.Context, source string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM quarantine_records
		WHERE source = $1 AND NOT released
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, source); err != nil {
		return 0, fmt.Errorf("failed to count quarantine records: %w", err)
	}
	return count, nil
}
