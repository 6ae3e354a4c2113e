package monitor

// SystemStatus represents the overall health state of the system or a source.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// SourceHealth contains health metrics for one ingestion source.
type SourceHealth struct {
	Source            string       `json:"source"`
	Status            SystemStatus `json:"status"`
	QualityScore      float64      `json:"quality_score"`
	QuarantinePending int          `json:"quarantine_pending"`
	UnresolvedErrors  int          `json:"unresolved_errors"`
}

// HealthReport contains the full system health report.
type HealthReport struct {
	SystemStatus SystemStatus            `json:"system_status"`
	Sources      map[string]SourceHealth `json:"sources"`
}
