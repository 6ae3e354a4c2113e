package domain

import "time"

// ValidationResult is the outcome of evaluating one rule against one batch.
// Created once per (rule, batch) pair; immutable.
type ValidationResult struct {
	RuleName      string    `json:"rule_name"`
	Passed        bool      `json:"passed"`
	TotalRecords  int       `json:"total_records"`
	FailedRecords int       `json:"failed_records"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	Severity      Severity  `json:"severity"`
	Action        Action    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

// PassedRecords is always derived, never stored.
func (v ValidationResult) PassedRecords() int {
	return v.TotalRecords - v.FailedRecords
}

// PassRate returns the pass percentage. A zero-record batch passes by
// convention, so the rate is 100.
func (v ValidationResult) PassRate() float64 {
	if v.TotalRecords == 0 {
		return 100
	}
	return float64(v.PassedRecords()) / float64(v.TotalRecords) * 100
}

// BatchReport aggregates all per-rule results for one batch.
type BatchReport struct {
	Source             string             `json:"source"`
	Timestamp          time.Time          `json:"timestamp"`
	TotalRecords       int                `json:"total_records"`
	PassedRecords      int                `json:"passed_records"`
	FailedRecords      int                `json:"failed_records"`
	QualityScore       float64            `json:"quality_score"`
	RuleResults        []ValidationResult `json:"rule_results"`
	QuarantinedRecords Batch              `json:"-"`
}
