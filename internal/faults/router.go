package faults

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"firegate/internal/core/domain"
)

// Alerter dispatches a notification for a fault. Implementations must not
// propagate delivery failures into the caller.
type Alerter interface {
	Alert(ctx context.Context, rec domain.ErrorRecord)
}

// QuarantineSink receives records deemed unfit for downstream use, along
// with the error metadata that condemned them.
type QuarantineSink interface {
	Quarantine(ctx context.Context, source string, records domain.Batch, rec domain.ErrorRecord) error
}

// ErrorSink persists error records to durable storage.
type ErrorSink interface {
	SaveError(ctx context.Context, rec *domain.ErrorRecord) error
}

// Occurrence carries the context of one caught fault.
type Occurrence struct {
	Source   string
	RecordID string
	Records  domain.Batch // records affected, quarantined on data faults
	Context  map[string]any
}

// Outcome reports what the router did with a fault.
type Outcome struct {
	Action domain.Action
	Record domain.ErrorRecord
}

// Router decides, per classified fault, whether to retry, quarantine,
// alert, or fail. Every caught fault produces exactly one ErrorRecord.
type Router struct {
	exec         *Executor
	policy       Policy
	alerter      Alerter
	quarantine   QuarantineSink
	errSink      ErrorSink
	nonRetryable []error

	mu  sync.Mutex
	log []*domain.ErrorRecord
	seq int64
}

// NewRouter creates a fault router. alerter, quarantine, and errSink may be
// nil; the corresponding action then only logs.
func NewRouter(policy Policy, alerter Alerter, quarantine QuarantineSink, errSink ErrorSink) *Router {
	return &Router{
		exec:       NewExecutor(),
		policy:     policy,
		alerter:    alerter,
		quarantine: quarantine,
		errSink:    errSink,
	}
}

// SetNonRetryable installs the caller's list of fault classes that always
// route to FAIL regardless of severity.
func (r *Router) SetNonRetryable(errs ...error) {
	r.nonRetryable = errs
}

// Execute runs op under the router's fault policy. RETRY and QUARANTINE
// outcomes are absorbed (nil error); ALERT and FAIL re-raise the original
// fault to the caller.
func (r *Router) Execute(ctx context.Context, op Operation, occ Occurrence) (Outcome, error) {
	err := op(ctx)
	if err == nil {
		return Outcome{}, nil
	}
	return r.Route(ctx, err, op, occ)
}

// Route handles an already-caught fault. The op is reinvoked only when the
// decision is RETRY; pass nil when no retry target exists.
func (r *Router) Route(ctx context.Context, fault error, op Operation, occ Occurrence) (Outcome, error) {
	rec := r.record(fault, occ)

	for _, nr := range r.nonRetryable {
		if errors.Is(fault, nr) {
			slog.Error("Non-retryable fault, failing unit of work",
				"error_id", rec.ErrorID, "error", fault)
			return Outcome{Action: domain.ActionFail, Record: *rec}, fault
		}
	}

	switch rec.Severity {
	case domain.SeverityCritical:
		// Never auto-retried: assumed unrecoverable without operator action.
		if r.alerter != nil {
			r.alerter.Alert(ctx, *rec)
		}
		slog.Error("Critical fault, alert dispatched",
			"error_id", rec.ErrorID, "source", occ.Source, "error", fault)
		return Outcome{Action: domain.ActionAlert, Record: *rec}, fault

	case domain.SeverityHigh:
		// Data-level faults reproduce on retry; isolate instead.
		r.doQuarantine(ctx, occ, rec)
		return Outcome{Action: domain.ActionQuarantine, Record: *rec}, nil

	case domain.SeverityMedium:
		if op != nil && r.policy.MaxRetries > 0 {
			if retryErr := r.exec.Do(ctx, op, r.policy); retryErr == nil {
				slog.Info("Fault recovered after retry", "error_id", rec.ErrorID)
				return Outcome{Action: domain.ActionRetry, Record: *rec}, nil
			} else if errors.Is(retryErr, context.Canceled) || errors.Is(retryErr, context.DeadlineExceeded) {
				return Outcome{Action: domain.ActionRetry, Record: *rec}, retryErr
			}
		}
		// Retry budget exhausted.
		r.doQuarantine(ctx, occ, rec)
		return Outcome{Action: domain.ActionQuarantine, Record: *rec}, nil

	default:
		r.doQuarantine(ctx, occ, rec)
		return Outcome{Action: domain.ActionQuarantine, Record: *rec}, nil
	}
}

// record builds the single ErrorRecord for this fault and appends it to the
// error log. Severity is assigned exactly once here.
func (r *Router) record(fault error, occ Occurrence) *domain.ErrorRecord {
	now := time.Now()

	r.mu.Lock()
	r.seq++
	rec := &domain.ErrorRecord{
		ErrorID:   fmt.Sprintf("ERR_%d_%04d", now.Unix(), r.seq),
		ErrorType: string(KindOf(fault)),
		Message:   fault.Error(),
		Severity:  Classify(fault),
		Source:    occ.Source,
		RecordID:  occ.RecordID,
		Timestamp: now,
		Context:   occ.Context,
	}
	r.log = append(r.log, rec)
	r.mu.Unlock()

	if r.errSink != nil {
		if err := r.errSink.SaveError(context.Background(), rec); err != nil {
			slog.Warn("Failed to persist error record", "error_id", rec.ErrorID, "error", err)
		}
	}
	return rec
}

func (r *Router) doQuarantine(ctx context.Context, occ Occurrence, rec *domain.ErrorRecord) {
	if r.quarantine == nil || len(occ.Records) == 0 {
		slog.Warn("Fault quarantined without records",
			"error_id", rec.ErrorID, "source", occ.Source, "error", rec.Message)
		return
	}
	if err := r.quarantine.Quarantine(ctx, occ.Source, occ.Records, *rec); err != nil {
		slog.Error("Failed to write quarantine records",
			"error_id", rec.ErrorID, "error", err)
		return
	}
	slog.Warn("Quarantined records",
		"error_id", rec.ErrorID, "source", occ.Source, "count", len(occ.Records))
}

// Resolve marks an error record resolved. The resolution fields are the only
// mutable part of an ErrorRecord and are set exactly once.
func (r *Router) Resolve(errorID, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.log {
		if rec.ErrorID == errorID {
			if rec.Resolved {
				return fmt.Errorf("error %s already resolved", errorID)
			}
			rec.Resolved = true
			rec.ResolutionNotes = notes
			return nil
		}
	}
	return fmt.Errorf("error %s not found", errorID)
}

// Log returns a snapshot of the error log.
func (r *Router) Log() []domain.ErrorRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ErrorRecord, len(r.log))
	for i, rec := range r.log {
		out[i] = *rec
	}
	return out
}

// Summary aggregates error counts by severity, source, and kind over the
// lookback window.
type Summary struct {
	Total      int
	BySeverity map[domain.Severity]int
	BySource   map[string]int
	ByKind     map[string]int
}

// Summarize builds a Summary covering errors newer than now-window.
func (r *Router) Summarize(window time.Duration) Summary {
	cutoff := time.Now().Add(-window)
	s := Summary{
		BySeverity: make(map[domain.Severity]int),
		BySource:   make(map[string]int),
		ByKind:     make(map[string]int),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.log {
		if rec.Timestamp.Before(cutoff) {
			continue
		}
		s.Total++
		s.BySeverity[rec.Severity]++
		s.BySource[rec.Source]++
		s.ByKind[rec.ErrorType]++
	}
	return s
}
