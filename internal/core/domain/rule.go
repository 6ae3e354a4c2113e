package domain

import (
	"sync"
	"time"
)

// Severity is a coarse priority classification used to pick a handling action.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Action is what the pipeline does when a rule fails or a fault occurs.
type Action string

const (
	ActionLog        Action = "log"
	ActionQuarantine Action = "quarantine"
	ActionRetry      Action = "retry"
	ActionAlert      Action = "alert"
	ActionFail       Action = "fail"
)

// PredicateKind selects one of the closed predicate variants.
type PredicateKind string

const (
	PredicateNotNull    PredicateKind = "not_null"
	PredicateBetween    PredicateKind = "between"
	PredicateAtLeast    PredicateKind = "at_least"
	PredicateMembership PredicateKind = "membership"
	PredicateCustom     PredicateKind = "custom"
)

// Predicate describes what a rule checks. Exactly one variant is active,
// chosen by Kind at construction time.
type Predicate struct {
	Kind    PredicateKind
	Column  string
	Lo, Hi  float64  // between
	Min     float64  // at_least
	Allowed []string // membership
}

// CustomEvaluator overrides the predicate for a rule. It receives the whole
// batch and must report overall pass/fail plus the failed record count.
type CustomEvaluator func(batch Batch) (passed bool, failed int, msg string, err error)

// Rule is a named data-quality check with a severity and an action policy.
// Immutable after construction except the usage counters, which only the
// evaluator touches.
type Rule struct {
	Name        string
	Description string
	Predicate   Predicate
	Severity    Severity
	Action      Action
	Custom      CustomEvaluator

	mu           sync.Mutex
	successCount int64
	failureCount int64
	lastUsed     time.Time
}

// RecordUse updates the rule's usage counters after an evaluation.
func (r *Rule) RecordUse(passed bool, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if passed {
		r.successCount++
	} else {
		r.failureCount++
	}
	r.lastUsed = at
}

// Usage returns the rule's usage counters.
func (r *Rule) Usage() (success, failure int64, lastUsed time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.successCount, r.failureCount, r.lastUsed
}

// NotNull builds a rule requiring the column to be present and non-empty.
func NotNull(name, column string, sev Severity, action Action) *Rule {
	return &Rule{
		Name:      name,
		Predicate: Predicate{Kind: PredicateNotNull, Column: column},
		Severity:  sev,
		Action:    action,
	}
}

// Between builds a rule requiring lo <= column <= hi.
func Between(name, column string, lo, hi float64, sev Severity, action Action) *Rule {
	return &Rule{
		Name:      name,
		Predicate: Predicate{Kind: PredicateBetween, Column: column, Lo: lo, Hi: hi},
		Severity:  sev,
		Action:    action,
	}
}

// AtLeast builds a rule requiring column >= min.
func AtLeast(name, column string, min float64, sev Severity, action Action) *Rule {
	return &Rule{
		Name:      name,
		Predicate: Predicate{Kind: PredicateAtLeast, Column: column, Min: min},
		Severity:  sev,
		Action:    action,
	}
}

// Membership builds a rule requiring the column value to be in allowed.
func Membership(name, column string, allowed []string, sev Severity, action Action) *Rule {
	return &Rule{
		Name:      name,
		Predicate: Predicate{Kind: PredicateMembership, Column: column, Allowed: allowed},
		Severity:  sev,
		Action:    action,
	}
}

// CustomRule builds a rule backed by a custom evaluator.
func CustomRule(name string, eval CustomEvaluator, sev Severity, action Action) *Rule {
	return &Rule{
		Name:      name,
		Predicate: Predicate{Kind: PredicateCustom},
		Severity:  sev,
		Action:    action,
		Custom:    eval,
	}
}
