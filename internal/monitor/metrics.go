package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesValidated tracks total batches validated per source
	BatchesValidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firegate_batches_validated_total",
			Help: "Total number of batches validated",
		},
		[]string{"source"},
	)

	// RecordsQuarantined tracks quarantined records per source
	RecordsQuarantined = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firegate_records_quarantined_total",
			Help: "Total number of records quarantined",
		},
		[]string{"source"},
	)

	// QualityScore tracks the latest batch quality score per source
	QualityScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "firegate_quality_score",
			Help: "Latest batch quality score (0-100)",
		},
		[]string{"source"},
	)

	// ThresholdBreaches tracks quality threshold breaches per source
	ThresholdBreaches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firegate_threshold_breaches_total",
			Help: "Total number of quality threshold breaches",
		},
		[]string{"source"},
	)

	// FaultsRouted tracks routed faults per source and action
	FaultsRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firegate_faults_routed_total",
			Help: "Total number of faults routed, by action taken",
		},
		[]string{"source", "action"},
	)

	// RetryAttempts tracks retry attempts per source
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firegate_retry_attempts_total",
			Help: "Total number of retry attempts",
		},
		[]string{"source"},
	)
)
