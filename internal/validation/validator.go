package validation

import (
	"log/slog"
	"sync"
	"time"

	"firegate/internal/core/domain"
)

// Validator runs a rule set over batches and composes per-rule results into
// a quality score and a quarantine subset. History is append-only for the
// process lifetime and safe for concurrent use.
type Validator struct {
	rules []*domain.Rule
	eval  *Evaluator

	mu      sync.Mutex
	history []domain.BatchReport
}

// NewValidator creates a validator over the given rule set. Rule order is
// preserved; it affects only which rule's message surfaces first in logs,
// never the final mask.
func NewValidator(rules ...*domain.Rule) *Validator {
	return &Validator{
		rules: rules,
		eval:  NewEvaluator(),
	}
}

// Rules returns the configured rule set.
func (v *Validator) Rules() []*domain.Rule { return v.rules }

// Validate runs every rule against the batch. A record is quarantined when
// any rule with a quarantine action marks it failed; records failing several
// quarantine rules count once. Observational rules contribute per-rule
// results but never remove records from the surviving set.
func (v *Validator) Validate(batch domain.Batch, source string) domain.BatchReport {
	report := domain.BatchReport{
		Source:       source,
		Timestamp:    time.Now(),
		TotalRecords: batch.Len(),
	}

	mask := domain.NewMask(batch.Len(), true)
	for _, rule := range v.rules {
		res, ruleMask := v.eval.Evaluate(rule, batch, mask)
		report.RuleResults = append(report.RuleResults, res)
		if rule.Action == domain.ActionQuarantine {
			mask = ruleMask
		}
	}

	report.PassedRecords = mask.CountTrue()
	report.FailedRecords = batch.Len() - report.PassedRecords
	if batch.Len() == 0 {
		report.QualityScore = 100
	} else {
		report.QualityScore = float64(report.PassedRecords) / float64(batch.Len()) * 100
	}
	if report.FailedRecords > 0 {
		report.QuarantinedRecords = batch.Subset(mask.Invert())
	}

	v.mu.Lock()
	v.history = append(v.history, report)
	v.mu.Unlock()

	slog.Info("Batch validated",
		"source", source,
		"total", report.TotalRecords,
		"failed", report.FailedRecords,
		"quality_score", report.QualityScore)
	return report
}

// History returns a snapshot of all reports produced so far.
func (v *Validator) History() []domain.BatchReport {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]domain.BatchReport, len(v.history))
	copy(out, v.history)
	return out
}
