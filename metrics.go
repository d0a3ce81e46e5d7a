package booster

import (
	"math"
	"sort"

	"github.com/samber/lo"
)

// ProductMetrics are the derived figures of one product row. Each is nil
// when its inputs are missing or the division is undefined.
type ProductMetrics struct {
	Margin        *float64 `json:"margin"`
	MarginPercent *float64 `json:"marginPercent"`
	Efficiency    *float64 `json:"efficiency"`
}

// ProductRow pairs a product with its metrics and list position.
type ProductRow struct {
	Index   int            `json:"index"`
	Item    ProductItem    `json:"item"`
	Metrics ProductMetrics `json:"metrics"`
}

// ComputeProductMetrics derives margin = price - cost, marginPercent =
// margin / price * 100 and efficiency = margin * repeatRate/100 / avgTime.
func ComputeProductMetrics(item ProductItem) ProductMetrics {
	var metrics ProductMetrics
	if item.Price == nil || item.Cost == nil {
		return metrics
	}
	margin := *item.Price - *item.Cost
	metrics.Margin = finite(margin)

	if *item.Price != 0 {
		metrics.MarginPercent = finite(margin / *item.Price * 100)
	}
	if item.RepeatRate != nil && item.AvgTime != nil && *item.AvgTime != 0 {
		metrics.Efficiency = finite(margin * (*item.RepeatRate / 100) / *item.AvgTime)
	}
	return metrics
}

// ProductRows computes metrics for every product, in list order.
func ProductRows(products []ProductItem) []ProductRow {
	return lo.Map(products, func(item ProductItem, index int) ProductRow {
		return ProductRow{Index: index, Item: item, Metrics: ComputeProductMetrics(item)}
	})
}

// Champion returns the row with the highest defined efficiency. Ties go to
// the earliest row.
func Champion(products []ProductItem) (ProductRow, bool) {
	candidates := lo.Filter(ProductRows(products), func(row ProductRow, _ int) bool {
		return row.Metrics.Efficiency != nil
	})
	if len(candidates) == 0 {
		return ProductRow{}, false
	}
	return lo.MaxBy(candidates, func(a, b ProductRow) bool {
		return *a.Metrics.Efficiency > *b.Metrics.Efficiency
	}), true
}

// ThinProductMargins reports whether every product has a margin percent
// below 20 and at least one product is named.
func ThinProductMargins(products []ProductItem) bool {
	if !lo.SomeBy(products, func(item ProductItem) bool { return FilledText(item.Name) }) {
		return false
	}
	return lo.EveryBy(products, func(item ProductItem) bool {
		pct := ComputeProductMetrics(item).MarginPercent
		return pct != nil && *pct < 20
	})
}

// Band classifies an economy margin percent.
type Band string

const (
	BandLow    Band = "low"
	BandNormal Band = "normal"
	BandGood   Band = "good"
)

// MarginBand maps pct to low (<15), normal (15..30) or good (>30).
func MarginBand(pct float64) Band {
	switch {
	case pct < 15:
		return BandLow
	case pct > 30:
		return BandGood
	default:
		return BandNormal
	}
}

// PayrollWarningThreshold is the payroll share of revenue, in percent, above
// which payroll is flagged.
const PayrollWarningThreshold = 40

// PayrollRatio returns payroll / revenue * 100, or nil when either input is
// missing or revenue is not positive.
func PayrollRatio(revenue, payroll *float64) *float64 {
	if revenue == nil || payroll == nil || *revenue <= 0 {
		return nil
	}
	return finite(*payroll / *revenue * 100)
}

// PayrollWarning reports whether the payroll ratio exceeds
// PayrollWarningThreshold.
func PayrollWarning(revenue, payroll *float64) bool {
	ratio := PayrollRatio(revenue, payroll)
	return ratio != nil && *ratio > PayrollWarningThreshold
}

// Financials are the economy figures a consumer displays together.
type Financials struct {
	Profit         *float64 `json:"profit"`
	MarginPercent  *float64 `json:"marginPercent"`
	Band           Band     `json:"band,omitempty"`
	PayrollRatio   *float64 `json:"payrollRatio"`
	PayrollWarning bool     `json:"payrollWarning"`
}

// ComputeFinancials derives profit and margin from the four inputs, so the
// result does not depend on the cached fields of e.
func ComputeFinancials(e EconomyLab) Financials {
	profit, margin := deriveProfit(e.Revenue, e.Cogs, e.Opex, e.Payroll)
	out := Financials{
		Profit:         profit,
		MarginPercent:  margin,
		PayrollRatio:   PayrollRatio(e.Revenue, e.Payroll),
		PayrollWarning: PayrollWarning(e.Revenue, e.Payroll),
	}
	if margin != nil {
		out.Band = MarginBand(*margin)
	}
	return out
}

// RecomputeEconomy returns e with Profit and MarginPercent rederived. Both
// are nil unless all four inputs are present; MarginPercent is also nil when
// revenue is not positive.
func RecomputeEconomy(e EconomyLab) EconomyLab {
	e.Profit, e.MarginPercent = deriveProfit(e.Revenue, e.Cogs, e.Opex, e.Payroll)
	return e
}

func deriveProfit(revenue, cogs, opex, payroll *float64) (*float64, *float64) {
	if revenue == nil || cogs == nil || opex == nil || payroll == nil {
		return nil, nil
	}
	profit := *revenue - *cogs - *opex - *payroll
	if *revenue <= 0 {
		return finite(profit), nil
	}
	return finite(profit), finite(profit / *revenue * 100)
}

// MainLever returns the first lever when it names an area and a
// hypothesis. Later levers never stand in for it.
func MainLever(e EconomyLab) (GrowthLever, bool) {
	if len(e.MainLevers) == 0 {
		return GrowthLever{}, false
	}
	first := e.MainLevers[0]
	if first.Area == AreaNone || !FilledText(first.Hypothesis) {
		return GrowthLever{}, false
	}
	return first, true
}

// Zone is one scored strategy area.
type Zone struct {
	Area  LeverArea `json:"area"`
	Score int       `json:"score"`
}

// Zones lists the present scores in declared order.
func Zones(s StrategyLab) []Zone {
	scored := []struct {
		area  LeverArea
		score *int
	}{
		{AreaSales, s.ScoreSales},
		{AreaMarketing, s.ScoreMarketing},
		{AreaProduct, s.ScoreProduct},
		{AreaTeam, s.ScoreTeam},
		{AreaFinance, s.ScoreFinance},
		{AreaOps, s.ScoreOps},
	}
	zones := make([]Zone, 0, len(scored))
	for _, entry := range scored {
		if entry.score != nil {
			zones = append(zones, Zone{Area: entry.area, Score: *entry.score})
		}
	}
	return zones
}

// WeakestZones returns up to n present scores, lowest first. Equal scores
// keep declared order.
func WeakestZones(s StrategyLab, n int) []Zone {
	zones := Zones(s)
	sort.SliceStable(zones, func(i, j int) bool {
		return zones[i].Score < zones[j].Score
	})
	if n >= 0 && len(zones) > n {
		zones = zones[:n]
	}
	return zones
}

// RadarZoneCount is how many low scores the Point A summary lists.
const RadarZoneCount = 3

// NeutralScore stands in for an absent score in ScoreAverage.
const NeutralScore = 5

// ScoreAverage is the mean over all six areas with absent scores counted as
// NeutralScore. It is undefined until at least one score is present.
func ScoreAverage(s StrategyLab) (float64, bool) {
	zones := Zones(s)
	if len(zones) == 0 {
		return 0, false
	}
	const areas = 6
	total := NeutralScore * (areas - len(zones))
	for _, zone := range zones {
		total += zone.Score
	}
	return float64(total) / areas, true
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
