package report

import (
	"strings"
	"testing"

	booster "github.com/goliatone/go-booster"
)

func sampleState() booster.BoosterState {
	s := booster.DefaultState()
	s.Product.RealValue = "clarity"
	s.Product.PremiumOffer = booster.OfferBlock{Audience: "founders", Pain: "chaos", Mechanism: "an audit", Promise: "a plan"}
	s.Product.Products[0] = booster.ProductItem{ID: "p1", Name: "Audit", Cost: booster.Float(100), Price: booster.Float(300), AvgTime: booster.Float(2), RepeatRate: booster.Float(50)}
	s.Economy.Revenue = booster.Float(100000)
	s.Economy.Cogs = booster.Float(30000)
	s.Economy.Opex = booster.Float(20000)
	s.Economy.Payroll = booster.Float(45000)
	s.Economy = booster.RecomputeEconomy(s.Economy)
	s.Economy.MainLevers[0] = booster.GrowthLever{ID: "l1", Area: booster.AreaSales, Problem: "long cycle", Hypothesis: "pilot offer"}
	s.Strategy.ScoreSales = booster.Int(3)
	s.Strategy.ScoreTeam = booster.Int(2)
	s.Strategy.ScoreOps = booster.Int(9)
	s.Strategy.TargetMoney = "2x revenue"
	return s
}

func assertContains(t *testing.T, out string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, out)
		}
	}
}

func TestProductReport(t *testing.T) {
	out, err := Product(sampleState(), Options{Currency: "USD"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertContains(t, out,
		"PRODUCT LAB",
		"Real value:               clarity",
		"Top 3 pains:              (not filled)",
		"We help founders solve \"chaos\" through an audit, so they get a plan.",
		"(fill audience, pain, mechanism and promise)",
		"1. Audit",
		"Cost: 100 USD | Price: 300 USD",
		"Margin: 200 (66.7%)",
		"Champion: Audit (efficiency 50)",
	)
	if strings.Contains(out, "2. ") {
		t.Fatalf("unnamed products must be skipped:\n%s", out)
	}
}

func TestEconomyReport(t *testing.T) {
	out, err := Economy(sampleState(), Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertContains(t, out,
		"Revenue: 100,000",
		"Profit: 5,000",
		"Margin: 5.0% (low)",
		"Warning: payroll is 45.0% of revenue",
		"1. SALES",
		"Hypothesis:      pilot offer",
		"Expected effect: (not filled)",
		"Work on Sales: pilot offer",
	)
}

func TestStrategyReport(t *testing.T) {
	out, err := Section(booster.SectionStrategy, sampleState(), Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertContains(t, out,
		"Sales:      3 / 10",
		"Marketing:  n/a",
		"Average score: 4.8 / 10",
		"Weakest zones: Team (2), Sales (3), Operations (9)",
		"Money:   2x revenue",
		"Role:    (not filled)",
	)
}

func TestDefaultStateUsesPlaceholders(t *testing.T) {
	out, err := Full(booster.DefaultState(), nil, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertContains(t, out,
		"PRE-ULTIMA BOOSTER",
		"Overall:  0%",
		"[PRODUCT CALCULATOR]\n(not filled)",
		"[GROWTH LEVERS]\n(not filled)",
		"(fill in the first lever)",
		"Revenue: (not filled)",
	)
	for _, absent := range []string{"Profit:", "Champion:", "Weakest zones:", "[POINT A]", "INSIGHTS", "<no value>"} {
		if strings.Contains(out, absent) {
			t.Fatalf("unexpected %q in default report:\n%s", absent, out)
		}
	}
}

func TestFullReportListsInsights(t *testing.T) {
	insights := []booster.Insight{{Code: "margin_low", Level: booster.LevelWarning, Message: "Margin is low."}}
	out, err := Full(sampleState(), insights, Options{Title: "Season review"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	assertContains(t, out, "Season review", "INSIGHTS", "[WARNING] Margin is low.", "STRATEGY LAB")
	if strings.Contains(out, "\n\n\n") {
		t.Fatalf("blank lines must be collapsed:\n%s", out)
	}
}

func TestUnknownSection(t *testing.T) {
	if _, err := Section("legal", booster.DefaultState(), Options{}); err == nil {
		t.Fatalf("expected unknown section error")
	}
}
