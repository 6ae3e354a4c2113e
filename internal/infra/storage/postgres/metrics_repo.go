package postgres

import (
	"context"
	"fmt"
	"time"

	"firegate/internal/infra/storage"
)

// MetricsRepo implements storage.MetricsRepository using PostgreSQL.
type MetricsRepo struct {
	db *DB
}

// NewMetricsRepo creates a new PostgreSQL metrics repository.
func NewMetricsRepo(db *DB) *MetricsRepo {
	return &MetricsRepo{db: db}
}

// Save stores one quality metric row.
func (r *MetricsRepo) Save(ctx context.Context, m *storage.QualityMetric) error {
	query := `
		INSERT INTO quality_metrics (source, recorded_at, quality_score, total_records, failed_records)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(
		ctx,
		query,
		m.Source,
		m.Timestamp,
		m.QualityScore,
		m.TotalRecords,
		m.FailedRecords,
	)
	if err != nil {
		return fmt.Errorf("failed to save quality metric: %w", err)
	}
	return nil
}

// GetRecent retrieves metrics for a source newer than since, oldest first.
func (r *MetricsRepo) GetRecent(ctx context.Context, source string, since time.Time) ([]*storage.QualityMetric, error) {
	query := `
		SELECT source, recorded_at, quality_score, total_records, failed_records
		FROM quality_metrics
		WHERE source = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC
	`

	var rows []struct {
		Source        string    `db:"source"`
		RecordedAt    time.Time `db:"recorded_at"`
		QualityScore  float64   `db:"quality_score"`
		TotalRecords  int       `db:"total_records"`
		FailedRecords int       `db:"failed_records"`
	}

	if err := r.db.SelectContext(ctx, &rows, query, source, since); err != nil {
		return nil, fmt.Errorf("failed to get quality metrics: %w", err)
	}

	var out []*storage.QualityMetric
	for _, row := range rows {
		out = append(out, &storage.QualityMetric{
			Source:        row.Source,
			Timestamp:     row.RecordedAt,
			QualityScore:  row.QualityScore,
			TotalRecords:  row.TotalRecords,
			FailedRecords: row.FailedRecords,
		})
	}
	return out, nil
}
