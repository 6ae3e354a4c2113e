// Package ingest provides batch sources for the validation pipeline.
package ingest

import (
	"context"

	"firegate/internal/core/domain"
)

// Source produces batches of raw records for validation.
type Source interface {
	// Name identifies the source in error records and quality metrics.
	Name() string

	// Extract pulls the next batch. An empty batch with nil error means the
	// source is drained.
	Extract(ctx context.Context) (domain.Batch, error)
}
