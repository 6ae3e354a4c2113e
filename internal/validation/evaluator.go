// Package validation scores batches of wildfire-incident records against a
// rule set and derives the quarantine subset.
package validation

import (
	"fmt"
	"log/slog"
	"time"

	"firegate/internal/core/domain"
)

// Evaluator applies one rule to one batch. A carry-in mask marks records
// already failed by an earlier quarantine rule in the same run so rules
// compose without double-counting.
type Evaluator struct {
	now func() time.Time
}

// NewEvaluator creates an evaluator using wall-clock time.
func NewEvaluator() *Evaluator {
	return &Evaluator{now: time.Now}
}

// Evaluate runs the rule and returns its result plus the carry mask
// intersected with this rule's per-record outcome. Evaluation never lets a
// fault escape; faults become failing results.
func (e *Evaluator) Evaluate(rule *domain.Rule, batch domain.Batch, carry domain.Mask) (domain.ValidationResult, domain.Mask) {
	res := domain.ValidationResult{
		RuleName:     rule.Name,
		TotalRecords: batch.Len(),
		Severity:     rule.Severity,
		Action:       rule.Action,
		Timestamp:    e.now(),
	}

	var mask domain.Mask
	if rule.Custom != nil {
		res, mask = e.evalCustom(rule, batch, carry, res)
	} else {
		res, mask = e.evalPredicate(rule, batch, carry, res)
	}

	rule.RecordUse(res.Passed, res.Timestamp)
	if res.FailedRecords > 0 {
		slog.Warn("Rule failed records",
			"rule", rule.Name,
			"failed", res.FailedRecords,
			"severity", rule.Severity)
	}
	return res, mask
}

func (e *Evaluator) evalCustom(rule *domain.Rule, batch domain.Batch, carry domain.Mask, res domain.ValidationResult) (domain.ValidationResult, domain.Mask) {
	passed, failed, msg, err := func() (passed bool, failed int, msg string, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("custom evaluator panic: %v", r)
			}
		}()
		return rule.Custom(batch)
	}()
	if err != nil {
		return failingResult(res, err), carry
	}

	if failed < 0 {
		failed = 0
	}
	if failed > batch.Len() {
		failed = batch.Len()
	}
	res.Passed = passed
	res.FailedRecords = failed
	res.ErrorMessage = msg

	// A custom evaluator cannot attribute failures to individual records,
	// so it only moves the mask when it condemns the whole batch.
	if !passed && failed == batch.Len() {
		return res, carry.Clone().And(domain.NewMask(batch.Len(), false))
	}
	return res, carry
}

func (e *Evaluator) evalPredicate(rule *domain.Rule, batch domain.Batch, carry domain.Mask, res domain.ValidationResult) (domain.ValidationResult, domain.Mask) {
	check, ok := predicateFunc(rule.Predicate)
	if !ok {
		// Unrecognized predicate shape degrades to a trivial pass.
		slog.Debug("Unrecognized predicate kind, rule passes trivially",
			"rule", rule.Name, "kind", rule.Predicate.Kind)
		res.Passed = true
		return res, carry
	}

	mask := carry.Clone()
	failed := 0
	for i, rec := range batch {
		if check(rec) {
			continue
		}
		if mask[i] {
			// Count only records not already excluded by an earlier rule.
			failed++
		}
		mask[i] = false
	}

	res.FailedRecords = failed
	res.Passed = failed == 0
	return res, mask
}

func predicateFunc(p domain.Predicate) (func(domain.Record) bool, bool) {
	switch p.Kind {
	case domain.PredicateNotNull:
		return func(r domain.Record) bool {
			return !r.IsNull(p.Column)
		}, true
	case domain.PredicateBetween:
		return func(r domain.Record) bool {
			v, ok := r.Float(p.Column)
			return ok && v >= p.Lo && v <= p.Hi
		}, true
	case domain.PredicateAtLeast:
		return func(r domain.Record) bool {
			v, ok := r.Float(p.Column)
			return ok && v >= p.Min
		}, true
	case domain.PredicateMembership:
		return func(r domain.Record) bool {
			s, ok := r.String(p.Column)
			if !ok {
				return false
			}
			for _, a := range p.Allowed {
				if s == a {
					return true
				}
			}
			return false
		}, true
	default:
		return nil, false
	}
}

func failingResult(res domain.ValidationResult, err error) domain.ValidationResult {
	res.Passed = false
	res.FailedRecords = res.TotalRecords
	res.Severity = domain.SeverityHigh
	res.ErrorMessage = err.Error()
	return res
}
