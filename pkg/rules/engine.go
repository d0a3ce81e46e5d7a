package rules

import (
	"fmt"
	"strings"
	"time"
)

// Option configures an evaluator.
type Option func(*config)

type config struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// WithProgramCache wires a ProgramCache into the evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *config) {
		cfg.cache = cache
	}
}

// WithFunctionRegistry wires a copy of registry into the evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// New returns the evaluator for engine. An empty engine selects expr.
func New(engine string, opts ...Option) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(opts...), nil
	case EngineCEL:
		return NewCELEvaluator(opts...), nil
	case EngineJS:
		evaluator := NewJSEvaluator(opts...)
		if evaluator == nil {
			return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrEngineUnavailable, EngineJS)
		}
		return evaluator, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// Evaluate runs expr with evaluator, wrapping failures in EvaluationError and
// reporting the attempt to logger.
func Evaluate(evaluator Evaluator, logger Logger, ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, ErrEmptyExpression
	}
	if logger == nil {
		logger = noopLogger{}
	}
	ctx = ctx.withDefaults()
	start := time.Now()
	value, err := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	err = ruleError(evaluator.Engine(), expr, ctx.label(), err)
	logger.LogEvaluation(LogEvent{
		Engine:   evaluator.Engine(),
		Expr:     expr,
		Label:    ctx.label(),
		Duration: duration,
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// EvaluateBool is Evaluate for predicates. A non-boolean result is an error.
func EvaluateBool(evaluator Evaluator, logger Logger, ctx RuleContext, expr string) (bool, error) {
	value, err := Evaluate(evaluator, logger, ctx, expr)
	if err != nil {
		return false, err
	}
	matched, ok := value.(bool)
	if !ok {
		return false, ruleError(evaluator.Engine(), expr, ctx.label(), fmt.Errorf("expected bool result, got %T", value))
	}
	return matched, nil
}
