package validation

import (
	"errors"
	"strings"
	"testing"

	"firegate/internal/core/domain"
)

func yearBatch(years ...int) domain.Batch {
	var b domain.Batch
	for _, y := range years {
		b = append(b, domain.Record{"fire_year": y})
	}
	return b
}

func TestEvaluateBetween(t *testing.T) {
	rule := domain.Between("valid_fire_year", "fire_year", 1950, 2025,
		domain.SeverityMedium, domain.ActionQuarantine)
	batch := yearBatch(2023, 1900, 2024, 2025)

	res, mask := NewEvaluator().Evaluate(rule, batch, domain.NewMask(4, true))

	if res.FailedRecords != 1 {
		t.Errorf("failed_records = %d, want 1", res.FailedRecords)
	}
	if res.Passed {
		t.Error("rule should not pass with a failing record")
	}
	if res.PassRate() != 75.0 {
		t.Errorf("pass_rate = %v, want 75.0", res.PassRate())
	}
	want := domain.Mask{true, false, true, true}
	for i := range want {
		if mask[i] != want[i] {
			t.Errorf("mask[%d] = %v, want %v", i, mask[i], want[i])
		}
	}
}

func TestEvaluateCarryMaskNoDoubleCount(t *testing.T) {
	rule := domain.Between("valid_fire_year", "fire_year", 1950, 2025,
		domain.SeverityMedium, domain.ActionQuarantine)
	batch := yearBatch(2023, 1900, 2024)
	carry := domain.Mask{true, false, true} // record 1 already excluded

	res, mask := NewEvaluator().Evaluate(rule, batch, carry)

	if res.FailedRecords != 0 {
		t.Errorf("failed_records = %d, want 0 (record already excluded)", res.FailedRecords)
	}
	if mask[1] {
		t.Error("carry-in exclusion must survive intersection")
	}
}

func TestEvaluateNotNull(t *testing.T) {
	rule := domain.NotNull("required_fire_name", "fire_name",
		domain.SeverityHigh, domain.ActionQuarantine)
	batch := domain.Batch{
		{"fire_name": "Camp Fire"},
		{"fire_name": ""},
		{"fire_name": nil},
		{},
	}

	res, _ := NewEvaluator().Evaluate(rule, batch, domain.NewMask(4, true))
	if res.FailedRecords != 3 {
		t.Errorf("failed_records = %d, want 3", res.FailedRecords)
	}
}

func TestEvaluateMembership(t *testing.T) {
	rule := domain.Membership("valid_damage_level", "damage_level",
		[]string{"MINOR", "MAJOR"}, domain.SeverityLow, domain.ActionLog)
	batch := domain.Batch{
		{"damage_level": "MINOR"},
		{"damage_level": "INVALID"},
		{"damage_level": "MAJOR"},
	}

	res, _ := NewEvaluator().Evaluate(rule, batch, domain.NewMask(3, true))
	if res.FailedRecords != 1 {
		t.Errorf("failed_records = %d, want 1", res.FailedRecords)
	}
}

func TestEvaluateUnknownPredicatePassesTrivially(t *testing.T) {
	rule := &domain.Rule{
		Name:      "mystery",
		Predicate: domain.Predicate{Kind: "regex_match", Column: "fire_name"},
		Severity:  domain.SeverityLow,
		Action:    domain.ActionQuarantine,
	}
	batch := yearBatch(2023, 2024)

	res, mask := NewEvaluator().Evaluate(rule, batch, domain.NewMask(2, true))
	if !res.Passed || res.FailedRecords != 0 {
		t.Errorf("unknown predicate must degrade to trivial pass, got %+v", res)
	}
	if mask.CountTrue() != 2 {
		t.Error("trivial pass must not touch the mask")
	}
}

func TestEvaluateCustomEvaluator(t *testing.T) {
	rule := domain.CustomRule("acre_sum", func(batch domain.Batch) (bool, int, string, error) {
		return false, 2, "acreage sum out of range", nil
	}, domain.SeverityMedium, domain.ActionLog)
	batch := yearBatch(2020, 2021, 2022)

	res, mask := NewEvaluator().Evaluate(rule, batch, domain.NewMask(3, true))
	if res.Passed || res.FailedRecords != 2 {
		t.Errorf("custom result = %+v, want failed=2", res)
	}
	if res.ErrorMessage != "acreage sum out of range" {
		t.Errorf("message = %q", res.ErrorMessage)
	}
	// Partial custom failures cannot attribute records.
	if mask.CountTrue() != 3 {
		t.Error("partial custom failure must leave the mask unchanged")
	}
}

func TestEvaluateCustomFaultBecomesFailingResult(t *testing.T) {
	rule := domain.CustomRule("exploding", func(batch domain.Batch) (bool, int, string, error) {
		return false, 0, "", errors.New("schema drift detected")
	}, domain.SeverityLow, domain.ActionQuarantine)
	batch := yearBatch(2020, 2021)

	res, _ := NewEvaluator().Evaluate(rule, batch, domain.NewMask(2, true))
	if res.Passed {
		t.Error("faulting evaluation must produce a failing result")
	}
	if res.FailedRecords != 2 {
		t.Errorf("failed_records = %d, want total", res.FailedRecords)
	}
	if res.Severity != domain.SeverityHigh {
		t.Errorf("severity = %v, want high on evaluation fault", res.Severity)
	}
	if !strings.Contains(res.ErrorMessage, "schema drift") {
		t.Errorf("error message lost: %q", res.ErrorMessage)
	}
}

func TestEvaluateCustomPanicIsContained(t *testing.T) {
	rule := domain.CustomRule("panicky", func(batch domain.Batch) (bool, int, string, error) {
		panic("index out of range")
	}, domain.SeverityLow, domain.ActionQuarantine)

	res, _ := NewEvaluator().Evaluate(rule, yearBatch(2020), domain.NewMask(1, true))
	if res.Passed || res.FailedRecords != 1 {
		t.Errorf("panic must degrade to failing result, got %+v", res)
	}
}

func TestEvaluateUpdatesUsageCounters(t *testing.T) {
	rule := domain.Between("valid_fire_year", "fire_year", 1950, 2025,
		domain.SeverityMedium, domain.ActionQuarantine)
	e := NewEvaluator()

	e.Evaluate(rule, yearBatch(2023), domain.NewMask(1, true))
	e.Evaluate(rule, yearBatch(1900), domain.NewMask(1, true))

	success, failure, lastUsed := rule.Usage()
	if success != 1 || failure != 1 {
		t.Errorf("usage = (%d, %d), want (1, 1)", success, failure)
	}
	if lastUsed.IsZero() {
		t.Error("last_used not set")
	}
}

func TestPassRateEmptyBatch(t *testing.T) {
	res := domain.ValidationResult{TotalRecords: 0, FailedRecords: 0}
	if res.PassRate() != 100 {
		t.Errorf("pass_rate of empty batch = %v, want 100 by convention", res.PassRate())
	}
}
