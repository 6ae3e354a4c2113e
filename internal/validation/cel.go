package validation

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"firegate/internal/core/domain"
)

// NewCELEvaluator compiles a CEL boolean expression into a custom rule
// evaluator. The expression sees each record as the map variable `record`,
// e.g. `record.fire_year >= 1950 && record.fire_year <= 2025`.
func NewCELEvaluator(expr string) (domain.CustomEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("record", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile expression %q: %w", expr, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for %q: %w", expr, err)
	}

	return func(batch domain.Batch) (bool, int, string, error) {
		failed := 0
		for _, rec := range batch {
			out, _, err := prg.Eval(map[string]any{"record": map[string]any(rec)})
			if err != nil {
				return false, batch.Len(), "", fmt.Errorf("cel evaluation: %w", err)
			}
			if passed, ok := out.Value().(bool); !ok || !passed {
				failed++
			}
		}
		msg := ""
		if failed > 0 {
			msg = fmt.Sprintf("%d records failed expression %q", failed, expr)
		}
		return failed == 0, failed, msg, nil
	}, nil
}

// NewCELRule builds a rule backed by a compiled CEL expression.
func NewCELRule(name, description, expr string, sev domain.Severity, action domain.Action) (*domain.Rule, error) {
	eval, err := NewCELEvaluator(expr)
	if err != nil {
		return nil, err
	}
	rule := domain.CustomRule(name, eval, sev, action)
	rule.Description = description
	return rule, nil
}
