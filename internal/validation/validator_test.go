package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"firegate/internal/core/domain"
)

func sampleBatch() domain.Batch {
	return domain.Batch{
		{"fire_name": "Valid Fire", "fire_year": 2024, "acres": 100.0, "latitude": 37.77, "longitude": -122.41, "damage_level": "MINOR"},
		{"fire_name": "Old Fire", "fire_year": 1900, "acres": 200.0, "latitude": 36.0, "longitude": -120.0, "damage_level": "MAJOR"},
		{"fire_name": "", "fire_year": 2023, "acres": -50.0, "latitude": 45.0, "longitude": -120.0, "damage_level": "INVALID"},
		{"fire_name": "Another Fire", "fire_year": 2025, "acres": 150.0, "latitude": 35.0, "longitude": -120.0, "damage_level": "UNKNOWN"},
	}
}

func TestValidateQuarantineUnion(t *testing.T) {
	// Record 2 fails three quarantine rules but must count once.
	v := NewValidator(DefaultWildfireRules()...)
	report := v.Validate(sampleBatch(), "fire_perimeters")

	if report.TotalRecords != 4 {
		t.Fatalf("total = %d, want 4", report.TotalRecords)
	}
	if report.FailedRecords != 2 {
		t.Errorf("failed = %d, want 2 (union of quarantine failures)", report.FailedRecords)
	}
	if report.QualityScore != 50.0 {
		t.Errorf("quality_score = %v, want 50.0", report.QualityScore)
	}
	if len(report.QuarantinedRecords) != 2 {
		t.Errorf("quarantined = %d records, want 2", len(report.QuarantinedRecords))
	}
}

func TestValidateObservationalRulesDoNotQuarantine(t *testing.T) {
	// damage_level is a LOG rule: its failures must not shrink the survivor set.
	rules := []*domain.Rule{
		domain.Membership("valid_damage_level", "damage_level", DamageLevels,
			domain.SeverityLow, domain.ActionLog),
	}
	batch := domain.Batch{
		{"damage_level": "BOGUS"},
		{"damage_level": "MINOR"},
	}

	report := NewValidator(rules...).Validate(batch, "damage_reports")
	if report.FailedRecords != 0 {
		t.Errorf("failed = %d, want 0: observational rules are bookkeeping only", report.FailedRecords)
	}
	if report.QualityScore != 100.0 {
		t.Errorf("quality_score = %v, want 100", report.QualityScore)
	}
	if got := report.RuleResults[0].FailedRecords; got != 1 {
		t.Errorf("per-rule failed = %d, want 1", got)
	}
}

func TestValidateFireYearRange(t *testing.T) {
	rule := domain.Between("valid_fire_year", "fire_year", 1950, 2025,
		domain.SeverityMedium, domain.ActionQuarantine)
	batch := yearBatch(2023, 1900, 2024, 2025)

	report := NewValidator(rule).Validate(batch, "test")
	if report.FailedRecords != 1 {
		t.Errorf("failed = %d, want 1", report.FailedRecords)
	}
	if report.QualityScore != 75.0 {
		t.Errorf("quality_score = %v, want 75.0", report.QualityScore)
	}
}

func TestValidateDeterministic(t *testing.T) {
	batch := sampleBatch()
	a := NewValidator(DefaultWildfireRules()...).Validate(batch, "src")
	b := NewValidator(DefaultWildfireRules()...).Validate(batch, "src")

	ignoreTimes := cmpopts.IgnoreFields(domain.BatchReport{}, "Timestamp")
	ignoreRuleTimes := cmpopts.IgnoreFields(domain.ValidationResult{}, "Timestamp")
	if diff := cmp.Diff(a, b, ignoreTimes, ignoreRuleTimes); diff != "" {
		t.Errorf("identical inputs produced different reports (-a +b):\n%s", diff)
	}
}

func TestValidateEmptyBatch(t *testing.T) {
	report := NewValidator(DefaultWildfireRules()...).Validate(domain.Batch{}, "empty")
	if report.QualityScore != 100 {
		t.Errorf("quality_score = %v, want 100 for empty batch", report.QualityScore)
	}
	if report.FailedRecords != 0 {
		t.Errorf("failed = %d, want 0", report.FailedRecords)
	}
}

func TestValidateInvariants(t *testing.T) {
	batches := []domain.Batch{
		sampleBatch(),
		{},
		yearBatch(1, 2, 3),
		{{"fire_name": "Only Fire", "fire_year": 2024, "acres": 1.0, "latitude": 36.0, "longitude": -120.0, "damage_level": "MINOR"}},
	}
	v := NewValidator(DefaultWildfireRules()...)

	for i, batch := range batches {
		report := v.Validate(batch, "invariants")
		if report.FailedRecords < 0 || report.FailedRecords > report.TotalRecords {
			t.Errorf("batch %d: failed_records %d outside [0, %d]", i, report.FailedRecords, report.TotalRecords)
		}
		if report.QualityScore < 0 || report.QualityScore > 100 {
			t.Errorf("batch %d: quality_score %v outside [0, 100]", i, report.QualityScore)
		}
		if (report.QualityScore == 100) != (report.FailedRecords == 0) {
			t.Errorf("batch %d: score==100 iff failed==0 violated (%v, %d)", i, report.QualityScore, report.FailedRecords)
		}
		for _, rr := range report.RuleResults {
			if rr.FailedRecords < 0 || rr.FailedRecords > rr.TotalRecords {
				t.Errorf("batch %d rule %s: failed %d outside [0, %d]", i, rr.RuleName, rr.FailedRecords, rr.TotalRecords)
			}
		}
	}
}

func TestValidateHistoryAppendOnly(t *testing.T) {
	v := NewValidator(DefaultWildfireRules()...)
	v.Validate(sampleBatch(), "a")
	v.Validate(sampleBatch(), "b")

	h := v.History()
	if len(h) != 2 {
		t.Fatalf("history length = %d, want 2", len(h))
	}
	if h[0].Source != "a" || h[1].Source != "b" {
		t.Errorf("history order wrong: %s, %s", h[0].Source, h[1].Source)
	}
}

func TestValidateDoesNotMutateBatch(t *testing.T) {
	batch := sampleBatch()
	want := len(batch[2])
	NewValidator(DefaultWildfireRules()...).Validate(batch, "src")
	if len(batch[2]) != want {
		t.Error("validation must not add columns to the source batch")
	}
}
