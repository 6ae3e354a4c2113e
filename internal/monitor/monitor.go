// Package monitor keeps per-source quality-score time series and surfaces
// threshold breaches and health status.
package monitor

import (
	"log/slog"
	"sync"
	"time"

	"firegate/internal/core/domain"
)

// Point is one quality observation in a source's series.
type Point struct {
	Timestamp    time.Time `json:"timestamp"`
	QualityScore float64   `json:"quality_score"`
}

// Breach is the flagged event raised when a batch's quality score falls
// below the configured threshold. It is a signal, not an error.
type Breach struct {
	Source    string
	Score     float64
	Threshold float64
	Timestamp time.Time
}

// BreachFunc receives threshold-breach events for routing to alerting.
type BreachFunc func(Breach)

// Monitor stores an append-only time series of per-batch quality scores per
// source. Safe for concurrent use.
type Monitor struct {
	threshold float64
	onBreach  BreachFunc

	mu     sync.RWMutex
	series map[string][]Point
}

// NewMonitor creates a monitor with the given quality threshold (0-100).
// onBreach may be nil.
func NewMonitor(threshold float64, onBreach BreachFunc) *Monitor {
	return &Monitor{
		threshold: threshold,
		onBreach:  onBreach,
		series:    make(map[string][]Point),
	}
}

// Record appends the report's score to the source's series and flags a
// breach when the score falls below the threshold.
func (m *Monitor) Record(report domain.BatchReport) {
	p := Point{Timestamp: report.Timestamp, QualityScore: report.QualityScore}

	m.mu.Lock()
	m.series[report.Source] = append(m.series[report.Source], p)
	m.mu.Unlock()

	BatchesValidated.WithLabelValues(report.Source).Inc()
	QualityScore.WithLabelValues(report.Source).Set(report.QualityScore)
	if report.FailedRecords > 0 {
		RecordsQuarantined.WithLabelValues(report.Source).Add(float64(report.FailedRecords))
	}

	if report.QualityScore < m.threshold {
		ThresholdBreaches.WithLabelValues(report.Source).Inc()
		slog.Warn("Quality threshold breached",
			"source", report.Source,
			"score", report.QualityScore,
			"threshold", m.threshold)
		if m.onBreach != nil {
			m.onBreach(Breach{
				Source:    report.Source,
				Score:     report.QualityScore,
				Threshold: m.threshold,
				Timestamp: report.Timestamp,
			})
		}
	}
}

// Trend returns the points recorded for source within the lookback window,
// oldest first. The series is append-only, so repeated calls over the same
// window are consistent.
func (m *Monitor) Trend(source string, window time.Duration) []Point {
	cutoff := time.Now().Add(-window)

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Point
	for _, p := range m.series[source] {
		if !p.Timestamp.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// Latest returns the most recent point for source, if any.
func (m *Monitor) Latest(source string) (Point, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.series[source]
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// Sources returns the names of all sources with at least one observation.
func (m *Monitor) Sources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.series))
	for s := range m.series {
		out = append(out, s)
	}
	return out
}

// Threshold returns the configured quality threshold.
func (m *Monitor) Threshold() float64 { return m.threshold }
