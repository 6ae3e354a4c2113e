package domain

import "time"

// ErrorRecord is the durable log entry created for every classified fault.
// Immutable except the resolution fields, which are set exactly once by an
// explicit resolution call.
type ErrorRecord struct {
	ErrorID         string         `json:"error_id"`
	ErrorType       string         `json:"error_type"`
	Message         string         `json:"message"`
	Severity        Severity       `json:"severity"`
	Source          string         `json:"source"`
	RecordID        string         `json:"record_id,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
	Context         map[string]any `json:"context,omitempty"`
	Resolved        bool           `json:"resolved"`
	ResolutionNotes string         `json:"resolution_notes,omitempty"`
}

// RetryJobStatus tracks a failed ingestion job in the retry queue.
type RetryJobStatus string

const (
	RetryJobPending  RetryJobStatus = "pending"
	RetryJobResolved RetryJobStatus = "resolved"
	RetryJobIgnored  RetryJobStatus = "ignored"
)

// RetryJob represents a failed ingestion unit queued for re-processing.
type RetryJob struct {
	ID          string         `json:"id"`
	Source      string         `json:"source"`
	ErrorID     string         `json:"error_id"`
	Error       string         `json:"error_msg"`
	RetryCount  int            `json:"retry_count"`
	Status      RetryJobStatus `json:"status"`
	LastAttempt int64          `json:"last_attempt"`
	CreatedAt   int64          `json:"created_at"`
}
