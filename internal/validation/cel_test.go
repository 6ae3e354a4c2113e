package validation

import (
	"testing"

	"firegate/internal/core/domain"
)

func TestCELRuleEvaluatesRecords(t *testing.T) {
	rule, err := NewCELRule(
		"containment_pct",
		"Containment percentage must be 0-100",
		"record.containment >= 0.0 && record.containment <= 100.0",
		domain.SeverityMedium, domain.ActionLog)
	if err != nil {
		t.Fatalf("NewCELRule: %v", err)
	}

	batch := domain.Batch{
		{"containment": 45.0},
		{"containment": 120.0},
		{"containment": 100.0},
	}
	res, _ := NewEvaluator().Evaluate(rule, batch, domain.NewMask(3, true))

	if res.Passed {
		t.Error("rule should fail with an out-of-range record")
	}
	if res.FailedRecords != 1 {
		t.Errorf("failed = %d, want 1", res.FailedRecords)
	}
}

func TestCELRuleCompileError(t *testing.T) {
	if _, err := NewCELRule("broken", "", "record.fire_year >=", domain.SeverityLow, domain.ActionLog); err == nil {
		t.Error("invalid expression must fail at construction")
	}
}

func TestCELRuleMissingColumnFailsClosed(t *testing.T) {
	rule, err := NewCELRule(
		"has_year", "", "record.fire_year >= 1950",
		domain.SeverityMedium, domain.ActionQuarantine)
	if err != nil {
		t.Fatalf("NewCELRule: %v", err)
	}

	batch := domain.Batch{{"acres": 10.0}}
	res, _ := NewEvaluator().Evaluate(rule, batch, domain.NewMask(1, true))

	// Missing key is a CEL eval error; the evaluator converts it to a
	// failing result rather than propagating.
	if res.Passed {
		t.Error("missing column must not pass")
	}
	if res.FailedRecords != 1 {
		t.Errorf("failed = %d, want total", res.FailedRecords)
	}
}
