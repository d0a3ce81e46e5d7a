package booster

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/samber/lo"

	"github.com/goliatone/go-booster/pkg/rules"
)

// InsightLevel grades an insight.
type InsightLevel string

const (
	LevelInfo    InsightLevel = "info"
	LevelWarning InsightLevel = "warning"
	LevelSuccess InsightLevel = "success"
)

// InsightRule fires when When evaluates to true against InsightEnv. Message
// is a text/template rendered against the same environment.
type InsightRule struct {
	Code    string       `json:"code" yaml:"code" validate:"required"`
	Level   InsightLevel `json:"level" yaml:"level" validate:"omitempty,oneof=info warning success"`
	When    string       `json:"when" yaml:"when" validate:"required"`
	Message string       `json:"message" yaml:"message"`
}

// Insight is a fired rule with its rendered message.
type Insight struct {
	Code    string       `json:"code"`
	Level   InsightLevel `json:"level"`
	Message string       `json:"message"`
}

// WeakestZoneCount is how many low scores the weakest-zones hint names.
const WeakestZoneCount = 2

// DefaultInsightRules are the built-in hints. The expressions stay within
// the syntax shared by the expr, CEL and JS engines.
func DefaultInsightRules() []InsightRule {
	return []InsightRule{
		{
			Code:    "margin_low",
			Level:   LevelWarning,
			When:    `economy.marginBand == "low"`,
			Message: `Margin is {{printf "%.1f" .economy.marginPercent}}%, below 15%. Review costs and pricing.`,
		},
		{
			Code:    "margin_normal",
			Level:   LevelInfo,
			When:    `economy.marginBand == "normal"`,
			Message: `Margin is {{printf "%.1f" .economy.marginPercent}}%, within the normal 15-30% range.`,
		},
		{
			Code:    "margin_good",
			Level:   LevelSuccess,
			When:    `economy.marginBand == "good"`,
			Message: `Margin is {{printf "%.1f" .economy.marginPercent}}%, above 30%.`,
		},
		{
			Code:    "payroll_high",
			Level:   LevelWarning,
			When:    `economy.payrollWarning`,
			Message: `Payroll takes {{printf "%.0f" .economy.payrollRatio}}% of revenue, above 40%.`,
		},
		{
			Code:    "champion_product",
			Level:   LevelSuccess,
			When:    `product.hasChampion`,
			Message: `Champion product: {{.product.champion}} (efficiency {{printf "%.1f" .product.championEfficiency}}).`,
		},
		{
			Code:    "thin_product_margins",
			Level:   LevelWarning,
			When:    `product.thinMargins`,
			Message: `Every product has a margin under 20%. Consider raising prices or cutting unit costs.`,
		},
		{
			Code:    "weakest_zones",
			Level:   LevelInfo,
			When:    `strategy.scored >= 2`,
			Message: `Weakest zones: {{.strategy.weakest}}. These are likely priorities for the season.`,
		},
		{
			Code:    "main_lever",
			Level:   LevelInfo,
			When:    `economy.mainLever != ""`,
			Message: `Main lever: {{.economy.mainLever}}. Hypothesis: {{.economy.mainLeverHypothesis}}`,
		},
	}
}

// InsightEnv flattens the derived figures of s into the variables rules see:
// product, economy, strategy and overall. Absent numbers appear as 0 next to
// a flag telling whether they are defined.
func InsightEnv(s BoosterState) map[string]any {
	progress := ComputeProgress(s)

	champion, hasChampion := Champion(s.Product.Products)
	championName := ""
	championEfficiency := 0.0
	if hasChampion {
		championName = strings.TrimSpace(champion.Item.Name)
		if championName == "" {
			championName = fmt.Sprintf("product %d", champion.Index+1)
		}
		championEfficiency = *champion.Metrics.Efficiency
	}

	financials := ComputeFinancials(s.Economy)
	leverArea, leverHypothesis := "", ""
	if lever, ok := MainLever(s.Economy); ok {
		leverArea = lever.Area.Label()
		leverHypothesis = strings.TrimSpace(lever.Hypothesis)
	}

	weakest := WeakestZones(s.Strategy, WeakestZoneCount)
	weakestNames := lo.Map(weakest, func(zone Zone, _ int) string { return zone.Area.Label() })

	return map[string]any{
		"overall": progress.Overall,
		"product": map[string]any{
			"progress":           progress.Product,
			"count":              len(s.Product.Products),
			"usable":             HasUsableProduct(s.Product.Products),
			"hasChampion":        hasChampion,
			"champion":           championName,
			"championEfficiency": championEfficiency,
			"thinMargins":        ThinProductMargins(s.Product.Products),
		},
		"economy": map[string]any{
			"progress":            progress.Economy,
			"complete":            financials.Profit != nil,
			"profit":              valueOrZero(financials.Profit),
			"hasMargin":           financials.MarginPercent != nil,
			"marginPercent":       valueOrZero(financials.MarginPercent),
			"marginBand":          string(financials.Band),
			"payrollRatio":        valueOrZero(financials.PayrollRatio),
			"payrollWarning":      financials.PayrollWarning,
			"mainLever":           leverArea,
			"mainLeverHypothesis": leverHypothesis,
		},
		"strategy": map[string]any{
			"progress": progress.Strategy,
			"scored":   len(Zones(s.Strategy)),
			"weakest":  strings.Join(weakestNames, ", "),
		},
	}
}

// InsightOption configures an InsightEngine.
type InsightOption func(*insightConfig)

type insightConfig struct {
	engine    string
	evaluator rules.Evaluator
	rules     []InsightRule
	extra     []InsightRule
	logger    rules.Logger
	now       func() time.Time
}

// WithInsightEngine selects the evaluator by engine name (expr, cel, js).
func WithInsightEngine(engine string) InsightOption {
	return func(cfg *insightConfig) {
		cfg.engine = engine
	}
}

// WithInsightEvaluator supplies a ready evaluator; it wins over
// WithInsightEngine.
func WithInsightEvaluator(evaluator rules.Evaluator) InsightOption {
	return func(cfg *insightConfig) {
		cfg.evaluator = evaluator
	}
}

// WithInsightRules replaces the default rules.
func WithInsightRules(list ...InsightRule) InsightOption {
	return func(cfg *insightConfig) {
		cfg.rules = append([]InsightRule{}, list...)
	}
}

// WithExtraInsightRules appends rules after the configured set.
func WithExtraInsightRules(list ...InsightRule) InsightOption {
	return func(cfg *insightConfig) {
		cfg.extra = append(cfg.extra, list...)
	}
}

// WithInsightLogger records every rule evaluation.
func WithInsightLogger(logger rules.Logger) InsightOption {
	return func(cfg *insightConfig) {
		cfg.logger = logger
	}
}

// WithInsightClock fixes the time exposed to rules as now.
func WithInsightClock(now func() time.Time) InsightOption {
	return func(cfg *insightConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// InsightEngine evaluates insight rules against a worksheet.
type InsightEngine struct {
	evaluator rules.Evaluator
	logger    rules.Logger
	now       func() time.Time
	rules     []compiledInsight
}

type compiledInsight struct {
	rule    InsightRule
	message *template.Template
}

// NewInsightEngine validates and compiles the configured rules.
func NewInsightEngine(opts ...InsightOption) (*InsightEngine, error) {
	cfg := insightConfig{
		engine: rules.EngineExpr,
		rules:  DefaultInsightRules(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	evaluator := cfg.evaluator
	if evaluator == nil {
		var err error
		evaluator, err = rules.New(cfg.engine,
			rules.WithProgramCache(rules.NewMemoryCache()),
			rules.WithFunctionRegistry(insightFunctions()),
		)
		if err != nil {
			return nil, fmt.Errorf("booster: insight engine: %w", err)
		}
	}

	all := append(append([]InsightRule{}, cfg.rules...), cfg.extra...)
	compiled := make([]compiledInsight, 0, len(all))
	seen := map[string]struct{}{}
	for _, rule := range all {
		if rule.Level == "" {
			rule.Level = LevelInfo
		}
		if err := validate.Struct(rule); err != nil {
			return nil, fmt.Errorf("booster: insight rule %q: %w", rule.Code, err)
		}
		if _, dup := seen[rule.Code]; dup {
			return nil, fmt.Errorf("booster: insight rule %q defined twice", rule.Code)
		}
		seen[rule.Code] = struct{}{}

		message, err := template.New(rule.Code).Option("missingkey=zero").Parse(rule.Message)
		if err != nil {
			return nil, fmt.Errorf("booster: insight rule %q message: %w", rule.Code, err)
		}
		if _, err := evaluator.Compile(rule.When); err != nil {
			return nil, fmt.Errorf("booster: insight rule %q: %w", rule.Code, err)
		}
		compiled = append(compiled, compiledInsight{rule: rule, message: message})
	}

	return &InsightEngine{
		evaluator: evaluator,
		logger:    cfg.logger,
		now:       cfg.now,
		rules:     compiled,
	}, nil
}

// Engine reports the evaluator engine name.
func (e *InsightEngine) Engine() string {
	return e.evaluator.Engine()
}

// Rules lists the active rules in evaluation order.
func (e *InsightEngine) Rules() []InsightRule {
	return lo.Map(e.rules, func(rule compiledInsight, _ int) InsightRule { return rule.rule })
}

// Evaluate returns the insights that fire for s, in rule order. A failing
// rule is skipped and reported in the joined error; the other rules still
// run.
func (e *InsightEngine) Evaluate(s BoosterState) ([]Insight, error) {
	env := InsightEnv(s)
	now := e.now()

	var (
		insights []Insight
		errs     []error
	)
	for _, rule := range e.rules {
		fired, err := rules.EvaluateBool(e.evaluator, e.logger, rules.RuleContext{
			Snapshot: env,
			Now:      &now,
			Label:    rule.rule.Code,
		}, rule.rule.When)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !fired {
			continue
		}
		var buf bytes.Buffer
		if err := rule.message.Execute(&buf, env); err != nil {
			errs = append(errs, fmt.Errorf("booster: render insight %q: %w", rule.rule.Code, err))
			continue
		}
		insights = append(insights, Insight{
			Code:    rule.rule.Code,
			Level:   rule.rule.Level,
			Message: strings.TrimSpace(buf.String()),
		})
	}
	return insights, errors.Join(errs...)
}

// insightFunctions are the helpers rule conditions may call. CEL reaches
// them through call("band", [x]).
func insightFunctions() *rules.FunctionRegistry {
	registry := rules.NewFunctionRegistry()
	registry.MustRegister("band", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("band: expected 1 argument, got %d", len(args))
		}
		pct, ok := toFloat(args[0])
		if !ok {
			return nil, fmt.Errorf("band: expected a number, got %T", args[0])
		}
		return string(MarginBand(pct)), nil
	})
	return registry
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
