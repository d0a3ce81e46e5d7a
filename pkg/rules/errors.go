package rules

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownEngine     = errors.New("rules: unknown engine")
	ErrEngineUnavailable = errors.New("rules: engine not compiled in")
	ErrEmptyExpression   = errors.New("rules: expression must not be empty")
)

// EvaluationError reports an insight rule whose condition failed to compile
// or run. Rule is the insight code taken from RuleContext.Label, so a broken
// rule in config.yaml can be found by name.
type EvaluationError struct {
	Engine string
	Rule   string
	Expr   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "rules: insight %s (%s)", orUnknown(e.Rule), e.Engine)
	if e.Expr != "" {
		fmt.Fprintf(&b, " when %q", e.Expr)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func orUnknown(rule string) string {
	if rule == "" {
		return "unknown"
	}
	return rule
}

// engineError tags failures that happen before any rule is involved.
func engineError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) || strings.HasPrefix(err.Error(), "rules:") {
		return err
	}
	return fmt.Errorf("rules: %s evaluator: %w", engine, err)
}

// ruleError attaches the rule being evaluated to err. An EvaluationError
// raised deeper keeps what it already knows.
func ruleError(engine, expr, rule string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return &EvaluationError{Engine: engine, Rule: rule, Expr: expr, Err: err}
	}
	if evalErr.Engine == "" {
		evalErr.Engine = engine
	}
	if evalErr.Rule == "" || evalErr.Rule == "unknown" {
		evalErr.Rule = rule
	}
	if evalErr.Expr == "" {
		evalErr.Expr = expr
	}
	return evalErr
}
