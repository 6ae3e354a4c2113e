package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"firegate/internal/core/domain"
	"firegate/internal/infra/storage"
)

// ErrorRepo implements storage.ErrorRepository using PostgreSQL.
type ErrorRepo struct {
	db *DB
}

// NewErrorRepo creates a new PostgreSQL error repository.
func NewErrorRepo(db *DB) *ErrorRepo {
	return &ErrorRepo{db: db}
}

type errorRow struct {
	ErrorID         string    `db:"error_id"`
	ErrorType       string    `db:"error_type"`
	Message         string    `db:"message"`
	Severity        string    `db:"severity"`
	Source          string    `db:"source"`
	RecordID        string    `db:"record_id"`
	Context         []byte    `db:"context"`
	Resolved        bool      `db:"resolved"`
	ResolutionNotes string    `db:"resolution_notes"`
	CreatedAt       time.Time `db:"created_at"`
}

func (row *errorRow) toDomain() (*domain.ErrorRecord, error) {
	rec := &domain.ErrorRecord{
		ErrorID:         row.ErrorID,
		ErrorType:       row.ErrorType,
		Message:         row.Message,
		Severity:        domain.Severity(row.Severity),
		Source:          row.Source,
		RecordID:        row.RecordID,
		Timestamp:       row.CreatedAt,
		Resolved:        row.Resolved,
		ResolutionNotes: row.ResolutionNotes,
	}
	if len(row.Context) > 0 {
		if err := json.Unmarshal(row.Context, &rec.Context); err != nil {
			return nil, fmt.Errorf("failed to unmarshal error context: %w", err)
		}
	}
	return rec, nil
}

// Save stores a new error record.
func (r *ErrorRepo) Save(ctx context.Context, rec *domain.ErrorRecord) error {
	query := `
		INSERT INTO error_log (error_id, error_type, message, severity, source, record_id, context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var contextJSON []byte
	if rec.Context != nil {
		var err error
		contextJSON, err = json.Marshal(rec.Context)
		if err != nil {
			return fmt.Errorf("failed to marshal error context: %w", err)
		}
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		rec.ErrorID,
		rec.ErrorType,
		rec.Message,
		string(rec.Severity),
		rec.Source,
		rec.RecordID,
		contextJSON,
		rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save error record: %w", err)
	}
	return nil
}

// Get retrieves an error record by id.
func (r *ErrorRepo) Get(ctx context.Context, errorID string) (*domain.ErrorRecord, error) {
	query := `
		SELECT error_id, error_type, message, severity, source, record_id, context, resolved, resolution_notes, created_at
		FROM error_log
		WHERE error_id = $1
	`

	var row errorRow
	err := r.db.GetContext(ctx, &row, query, errorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get error record: %w", err)
	}
	return row.toDomain()
}

// Resolve marks an error record resolved with notes.
func (r *ErrorRepo) Resolve(ctx context.Context, errorID, notes string) error {
	query := `
		UPDATE error_log
		SET resolved = TRUE, resolution_notes = $2
		WHERE error_id = $1 AND NOT resolved
	`
	res, err := r.db.ExecContext(ctx, query, errorID, notes)
	if err != nil {
		return fmt.Errorf("failed to resolve error record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetUnresolved retrieves unresolved error records, newest first. An empty
// source matches all sources.
func (r *ErrorRepo) GetUnresolved(ctx context.Context, source string) ([]*domain.ErrorRecord, error) {
	query := `
		SELECT error_id, error_type, message, severity, source, record_id, context, resolved, resolution_notes, created_at
		FROM error_log
		WHERE NOT resolved AND ($1 = '' OR source = $1)
		ORDER BY created_at DESC
	`

	var rows []errorRow
	if err := r.db.SelectContext(ctx, &rows, query, source); err != nil {
		return nil, fmt.Errorf("failed to get unresolved errors: %w", err)
	}

	var out []*domain.ErrorRecord
	for i := range rows {
		rec, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// CountUnresolved returns the number of unresolved errors for a source.
func (r *ErrorRepo) CountUnresolved(ctx context.Context, source string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM error_log
		WHERE NOT resolved AND ($1 = '' OR source = $1)
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, source); err != nil {
		return 0, fmt.Errorf("failed to count unresolved errors: %w", err)
	}
	return count, nil
}
