package storage

import (
	"context"
	"errors"
	"time"

	"firegate/internal/core/domain"
)

var (
	// ErrNotFound is returned when a requested row doesn't exist
	ErrNotFound = errors.New("not found")
)

// QuarantineRow is one quarantined record plus the error metadata that
// condemned it.
type QuarantineRow struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	ErrorID   string        `json:"error_id"`
	ErrorType string        `json:"error_type"`
	Reason    string        `json:"reason"`
	Payload   domain.Record `json:"payload"`
	CreatedAt time.Time     `json:"created_at"`
	Released  bool          `json:"released"`
}

// QualityMetric is one emitted per-batch quality observation.
type QualityMetric struct {
	Source        string    `json:"source"`
	Timestamp     time.Time `json:"timestamp"`
	QualityScore  float64   `json:"quality_score"`
	TotalRecords  int       `json:"total_records"`
	FailedRecords int       `json:"failed_records"`
}

// QuarantineRepository persists quarantined records keyed by source name
type QuarantineRepository interface {
	// Add quarantines a batch of records under one error record
	Add(ctx context.Context, source string, records domain.Batch, rec domain.ErrorRecord) error

	// GetPending retrieves unreleased quarantine rows for a source
	GetPending(ctx context.Context, source string) ([]*QuarantineRow, error)

	// Release marks a quarantine row as handled
	Release(ctx context.Context, id string) error

	// Count returns the number of unreleased rows for a source
	Count(ctx context.Context, source string) (int, error)
}

// ErrorRepository persists error records
type ErrorRepository interface {
	// Save stores a new error record
	Save(ctx context.Context, rec *domain.ErrorRecord) error

	// Get retrieves an error record by id
	Get(ctx context.Context, errorID string) (*domain.ErrorRecord, error)

	// Resolve marks an error record resolved with notes
	Resolve(ctx context.Context, errorID, notes string) error

	// GetUnresolved retrieves unresolved error records, newest first
	GetUnresolved(ctx context.Context, source string) ([]*domain.ErrorRecord, error)

	// CountUnresolved returns the number of unresolved errors for a source
	CountUnresolved(ctx context.Context, source string) (int, error)
}

// MetricsRepository persists per-batch quality metrics for dashboarding
type MetricsRepository interface {
	// Save stores one quality metric row
	Save(ctx context.Context, m *QualityMetric) error

	// GetRecent retrieves metrics for a source newer than since, oldest first
	GetRecent(ctx context.Context, source string, since time.Time) ([]*QualityMetric, error)
}
