package ingest

import (
	"context"
	"math/rand"
	"time"

	"firegate/internal/core/domain"
)

// StreamSource simulates a live incident feed for load testing and demos.
// Each Extract yields one batch of synthetic fire reports, a configurable
// fraction of which carry quality defects.
type StreamSource struct {
	name       string
	batchSize  int
	defectRate float64
	rand       *rand.Rand
	seq        int
}

// NewStreamSource creates a synthetic stream. defectRate is the probability
// in [0,1] that a generated record is defective.
func NewStreamSource(name string, batchSize int, defectRate float64, seed int64) *StreamSource {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &StreamSource{
		name:       name,
		batchSize:  batchSize,
		defectRate: defectRate,
		rand:       rand.New(rand.NewSource(seed)),
	}
}

func (s *StreamSource) Name() string { return s.name }

var damageLevels = []string{"MINOR", "MODERATE", "MAJOR", "DESTROYED", "UNKNOWN"}

// Extract generates the next synthetic batch.
func (s *StreamSource) Extract(ctx context.Context) (domain.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := make(domain.Batch, 0, s.batchSize)
	for i := 0; i < s.batchSize; i++ {
		s.seq++
		rec := domain.Record{
			"incident_id":  s.seq,
			"fire_name":    "SIM-FIRE",
			"fire_year":    float64(2000 + s.rand.Intn(26)),
			"latitude":     32.5 + s.rand.Float64()*9.5,
			"longitude":    -124.5 + s.rand.Float64()*10.5,
			"acres":        s.rand.Float64() * 5000,
			"damage_level": damageLevels[s.rand.Intn(len(damageLevels))],
			"reported_at":  time.Now().Format(time.RFC3339),
		}
		if s.rand.Float64() < s.defectRate {
			s.corrupt(rec)
		}
		batch = append(batch, rec)
	}
	return batch, nil
}

// corrupt injects one of the defect classes the default rules catch.
func (s *StreamSource) corrupt(rec domain.Record) {
	switch s.rand.Intn(5) {
	case 0:
		rec["latitude"] = 99.9
	case 1:
		rec["longitude"] = 45.0
	case 2:
		rec["fire_year"] = float64(1800)
	case 3:
		rec["acres"] = -50.0
	default:
		rec["fire_name"] = nil
	}
}
