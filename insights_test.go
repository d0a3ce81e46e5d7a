package booster

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-booster/pkg/rules"
)

func insightState() BoosterState {
	s := normalizeState(DefaultState(), sequentialIDs("id"))
	s.Product.Products[0] = ProductItem{ID: "p1", Name: "Audit", Cost: Float(100), Price: Float(300), AvgTime: Float(2), RepeatRate: Float(50)}
	s.Product.Products[1] = ProductItem{ID: "p2", Name: "Course", Cost: Float(10), Price: Float(20), AvgTime: Float(1), RepeatRate: Float(10)}
	s.Economy.Revenue = Float(100000)
	s.Economy.Cogs = Float(30000)
	s.Economy.Opex = Float(20000)
	s.Economy.Payroll = Float(45000)
	s.Economy = RecomputeEconomy(s.Economy)
	s.Economy.MainLevers[0] = GrowthLever{ID: "l1", Area: AreaSales, Problem: "long cycle", Hypothesis: "pilot offer"}
	s.Strategy.ScoreSales = Int(3)
	s.Strategy.ScoreTeam = Int(2)
	s.Strategy.ScoreOps = Int(9)
	return s
}

func insightCodes(insights []Insight) []string {
	codes := make([]string, 0, len(insights))
	for _, insight := range insights {
		codes = append(codes, insight.Code)
	}
	return codes
}

func TestDefaultInsights(t *testing.T) {
	engine, err := NewInsightEngine()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := engine.Evaluate(insightState())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	want := []string{"margin_low", "payroll_high", "champion_product", "weakest_zones", "main_lever"}
	if diff := cmp.Diff(want, insightCodes(got)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}

	messages := map[string]string{}
	for _, insight := range got {
		messages[insight.Code] = insight.Message
	}
	if messages["margin_low"] != "Margin is 5.0%, below 15%. Review costs and pricing." {
		t.Fatalf("unexpected margin message %q", messages["margin_low"])
	}
	if messages["champion_product"] != "Champion product: Audit (efficiency 50.0)." {
		t.Fatalf("unexpected champion message %q", messages["champion_product"])
	}
	if messages["weakest_zones"] != "Weakest zones: Team, Sales. These are likely priorities for the season." {
		t.Fatalf("unexpected weakest message %q", messages["weakest_zones"])
	}
	if got[0].Level != LevelWarning {
		t.Fatalf("expected warning level, got %q", got[0].Level)
	}
}

func TestDefaultStateHasNoInsights(t *testing.T) {
	engine, err := NewInsightEngine()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := engine.Evaluate(DefaultState())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no insights, got %v", insightCodes(got))
	}
}

func TestCELInsightsMatchExpr(t *testing.T) {
	exprEngine, err := NewInsightEngine(WithInsightEngine(rules.EngineExpr))
	if err != nil {
		t.Fatalf("expr engine: %v", err)
	}
	celEngine, err := NewInsightEngine(WithInsightEngine(rules.EngineCEL))
	if err != nil {
		t.Fatalf("cel engine: %v", err)
	}
	if celEngine.Engine() != rules.EngineCEL {
		t.Fatalf("expected cel engine, got %s", celEngine.Engine())
	}

	s := insightState()
	fromExpr, err := exprEngine.Evaluate(s)
	if err != nil {
		t.Fatalf("expr evaluate: %v", err)
	}
	fromCEL, err := celEngine.Evaluate(s)
	if err != nil {
		t.Fatalf("cel evaluate: %v", err)
	}
	if diff := cmp.Diff(fromExpr, fromCEL); diff != "" {
		t.Fatalf("engines disagree (-expr +cel):\n%s", diff)
	}
}

func TestExtraInsightRules(t *testing.T) {
	engine, err := NewInsightEngine(
		WithInsightRules(),
		WithExtraInsightRules(InsightRule{
			Code:    "progress_started",
			When:    "overall > 0",
			Message: "Overall progress {{.overall}}%",
		}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if len(engine.Rules()) != 1 || engine.Rules()[0].Level != LevelInfo {
		t.Fatalf("expected one info rule, got %+v", engine.Rules())
	}
	got, err := engine.Evaluate(insightState())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0].Message, "Overall progress ") {
		t.Fatalf("unexpected insights %+v", got)
	}
}

func TestInsightRuleValidation(t *testing.T) {
	cases := map[string]InsightRule{
		"missing_when": {Code: "x"},
		"bad_level":    {Code: "x", When: "true", Level: "panic"},
		"bad_template": {Code: "x", When: "true", Message: "{{.broken"},
		"bad_expr":     {Code: "x", When: "1 +"},
	}
	for name, rule := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewInsightEngine(WithInsightRules(rule)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if _, err := NewInsightEngine(WithExtraInsightRules(InsightRule{Code: "margin_low", When: "true"})); err == nil {
		t.Fatalf("expected duplicate code error")
	}
	if _, err := NewInsightEngine(WithInsightEngine("lua")); !errors.Is(err, rules.ErrUnknownEngine) {
		t.Fatalf("expected ErrUnknownEngine, got %v", err)
	}
}

func TestInsightRuntimeErrorsAreJoined(t *testing.T) {
	var logged []rules.LogEvent
	engine, err := NewInsightEngine(
		WithInsightRules(
			InsightRule{Code: "not_bool", When: `economy.marginBand`},
			InsightRule{Code: "always", When: "true", Message: "ok"},
		),
		WithInsightLogger(rules.LoggerFunc(func(event rules.LogEvent) { logged = append(logged, event) })),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := engine.Evaluate(DefaultState())
	if err == nil || !strings.Contains(err.Error(), "expected bool") {
		t.Fatalf("expected bool error, got %v", err)
	}
	if diff := cmp.Diff([]string{"always"}, insightCodes(got)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if len(logged) != 2 {
		t.Fatalf("expected two logged evaluations, got %d", len(logged))
	}
}

func mainLeverRule(t *testing.T) InsightRule {
	t.Helper()
	for _, rule := range DefaultInsightRules() {
		if rule.Code == "main_lever" {
			return rule
		}
	}
	t.Fatalf("main_lever rule missing")
	return InsightRule{}
}

func TestMainLeverInsightUsesFirstLever(t *testing.T) {
	engine, err := NewInsightEngine(WithInsightRules(mainLeverRule(t)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	s := normalizeState(DefaultState(), sequentialIDs("id"))
	s.Economy.MainLevers[0] = GrowthLever{ID: "l1", Area: AreaSales, Hypothesis: "pilot offer"}
	s.Economy.MainLevers[1] = GrowthLever{ID: "l2", Area: AreaTeam, Problem: "slow hiring", Hypothesis: "referrals"}
	got, err := engine.Evaluate(s)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(got) != 1 || got[0].Message != "Main lever: Sales. Hypothesis: pilot offer" {
		t.Fatalf("unexpected insights %+v", got)
	}

	s.Economy.MainLevers[0] = GrowthLever{ID: "l1"}
	got, err = engine.Evaluate(s)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("a later lever must not stand in for the first, got %+v", got)
	}
}

func TestInsightRulesCanCallBand(t *testing.T) {
	engine, err := NewInsightEngine(WithInsightRules(InsightRule{
		Code:    "low_band",
		Level:   LevelWarning,
		When:    `economy.hasMargin && band(economy.marginPercent) == "low"`,
		Message: "Margin band is {{.economy.marginBand}}",
	}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	got, err := engine.Evaluate(insightState())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(got) != 1 || got[0].Message != "Margin band is low" {
		t.Fatalf("unexpected insights %+v", got)
	}
}

func TestBandRejectsBadArguments(t *testing.T) {
	registry := insightFunctions()
	if _, err := registry.Call("band"); err == nil {
		t.Fatalf("expected arity error")
	}
	if _, err := registry.Call("band", "wide"); err == nil {
		t.Fatalf("expected type error")
	}
	got, err := registry.Call("Band", 40)
	if err != nil || got != "good" {
		t.Fatalf("expected good, got %v %v", got, err)
	}
}
