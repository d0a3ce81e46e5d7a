package booster

import (
	"math"
	"strings"
)

const (
	productProgressSlots  = 20
	economyProgressSlots  = 7
	strategyProgressSlots = 11
)

// IsFilled reports whether v counts as entered: text with non-space content,
// or any present number including zero.
func IsFilled(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case string:
		return FilledText(value)
	case LeverArea:
		return FilledText(string(value))
	case *float64:
		return value != nil
	case *int:
		return value != nil
	case float64, int:
		return true
	}
	return false
}

// FilledText reports whether text has non-space content.
func FilledText(text string) bool {
	return strings.TrimSpace(text) != ""
}

// FilledNumber reports whether a numeric input is present.
func FilledNumber(n *float64) bool {
	return n != nil
}

// Progress bundles the section and overall completion percentages.
type Progress struct {
	Product  int `json:"product"`
	Economy  int `json:"economy"`
	Strategy int `json:"strategy"`
	Overall  int `json:"overall"`
}

// ComputeProgress evaluates every progress function against s.
func ComputeProgress(s BoosterState) Progress {
	product := ProductProgress(s.Product)
	economy := EconomyProgress(s.Economy)
	strategy := StrategyProgress(s.Strategy)
	return Progress{
		Product:  product,
		Economy:  economy,
		Strategy: strategy,
		Overall:  OverallProgress(product, economy, strategy),
	}
}

// ProductProgress counts the 7 diagnostic fields, both offer blocks and one
// slot for having at least one usable product row, out of 20.
func ProductProgress(p ProductLab) int {
	filled := countFilled(
		p.TargetAudienceMostProfitable,
		p.RealValue,
		p.Top3Pains,
		p.Products80Now,
		p.Products80Future,
		p.WhatMarketDoesntNeed,
		p.SevenSecondPitch,
	)
	filled += offerFilled(p.PremiumOffer)
	filled += offerFilled(p.MassOffer)
	if HasUsableProduct(p.Products) {
		filled++
	}
	return percent(filled, productProgressSlots)
}

// HasUsableProduct reports whether any row has a name and at least one
// numeric input.
func HasUsableProduct(products []ProductItem) bool {
	for _, item := range products {
		if !FilledText(item.Name) {
			continue
		}
		if item.Cost != nil || item.Price != nil || item.AvgTime != nil || item.RepeatRate != nil {
			return true
		}
	}
	return false
}

// EconomyProgress counts the four inputs and one completion signal for each
// of the first LeverCount levers, out of 7.
func EconomyProgress(e EconomyLab) int {
	filled := countFilled(e.Revenue, e.Cogs, e.Opex, e.Payroll)
	for i, lever := range e.MainLevers {
		if i >= LeverCount {
			break
		}
		if LeverComplete(lever) {
			filled++
		}
	}
	return percent(filled, economyProgressSlots)
}

// LeverComplete reports whether area, problem and hypothesis are filled.
// ExpectedEffect is optional.
func LeverComplete(lever GrowthLever) bool {
	return IsFilled(lever.Area) && FilledText(lever.Problem) && FilledText(lever.Hypothesis)
}

// StrategyProgress counts the six scores and five targets, out of 11.
func StrategyProgress(s StrategyLab) int {
	filled := countFilled(
		s.ScoreSales,
		s.ScoreMarketing,
		s.ScoreProduct,
		s.ScoreTeam,
		s.ScoreFinance,
		s.ScoreOps,
		s.TargetMoney,
		s.TargetTeam,
		s.TargetProduct,
		s.TargetSystems,
		s.TargetRole,
	)
	return percent(filled, strategyProgressSlots)
}

// OverallProgress is the unweighted rounded mean of the section progresses.
func OverallProgress(product, economy, strategy int) int {
	return int(math.Round(float64(product+economy+strategy) / 3))
}

func offerFilled(block OfferBlock) int {
	return countFilled(block.Audience, block.Pain, block.Promise, block.Mechanism, block.Proof, block.WhyNow)
}

func countFilled(values ...any) int {
	count := 0
	for _, value := range values {
		if IsFilled(value) {
			count++
		}
	}
	return count
}

func percent(filled, total int) int {
	if total <= 0 {
		return 0
	}
	if filled > total {
		filled = total
	}
	return int(math.Round(100 * float64(filled) / float64(total)))
}
