package booster

import "github.com/goliatone/go-booster/layering"

// Patches carry one layering.Optional per settable field. Only provided
// fields are merged; Some(nil) clears a numeric field back to absent. Field
// names match the target struct so layering.Apply can pair them.

// ProductPatch is a partial update of ProductLab.
type ProductPatch struct {
	TargetAudienceMostProfitable layering.Optional[string] `json:"targetAudienceMostProfitable"`
	RealValue                    layering.Optional[string] `json:"realValue"`
	Top3Pains                    layering.Optional[string] `json:"top3Pains"`
	Products80Now                layering.Optional[string] `json:"products80Now"`
	Products80Future             layering.Optional[string] `json:"products80Future"`
	WhatMarketDoesntNeed         layering.Optional[string] `json:"whatMarketDoesntNeed"`
	SevenSecondPitch             layering.Optional[string] `json:"sevenSecondPitch"`

	PremiumOffer layering.Optional[OfferBlock] `json:"premiumOffer"`
	MassOffer    layering.Optional[OfferBlock] `json:"massOffer"`

	// Products replaces the whole list. The store pads it to MinProducts and
	// truncates it to MaxProducts.
	Products layering.Optional[[]ProductItem] `json:"products"`
}

// EconomyPatch is a partial update of EconomyLab. Profit and MarginPercent
// are derived and have no patch field.
type EconomyPatch struct {
	Revenue layering.Optional[*float64] `json:"revenue"`
	Cogs    layering.Optional[*float64] `json:"cogs"`
	Opex    layering.Optional[*float64] `json:"opex"`
	Payroll layering.Optional[*float64] `json:"payroll"`

	// MainLevers replaces all levers. The store pads or truncates to
	// LeverCount.
	MainLevers layering.Optional[[]GrowthLever] `json:"mainLevers"`
}

// StrategyPatch is a partial update of StrategyLab. Scores are clamped into
// [MinScore, MaxScore] by the store.
type StrategyPatch struct {
	ScoreSales     layering.Optional[*int] `json:"scoreSales"`
	ScoreMarketing layering.Optional[*int] `json:"scoreMarketing"`
	ScoreProduct   layering.Optional[*int] `json:"scoreProduct"`
	ScoreTeam      layering.Optional[*int] `json:"scoreTeam"`
	ScoreFinance   layering.Optional[*int] `json:"scoreFinance"`
	ScoreOps       layering.Optional[*int] `json:"scoreOps"`

	TargetMoney   layering.Optional[string] `json:"targetMoney"`
	TargetTeam    layering.Optional[string] `json:"targetTeam"`
	TargetProduct layering.Optional[string] `json:"targetProduct"`
	TargetSystems layering.Optional[string] `json:"targetSystems"`
	TargetRole    layering.Optional[string] `json:"targetRole"`
}

// ProductItemPatch is a partial update of one ProductItem.
type ProductItemPatch struct {
	Name       layering.Optional[string]   `json:"name"`
	Cost       layering.Optional[*float64] `json:"cost"`
	Price      layering.Optional[*float64] `json:"price"`
	AvgTime    layering.Optional[*float64] `json:"avgTime"`
	RepeatRate layering.Optional[*float64] `json:"repeatRate"`
}

// LeverPatch is a partial update of one GrowthLever. Unknown areas are
// stored as AreaNone.
type LeverPatch struct {
	Area           layering.Optional[LeverArea] `json:"area"`
	Problem        layering.Optional[string]    `json:"problem"`
	Hypothesis     layering.Optional[string]    `json:"hypothesis"`
	ExpectedEffect layering.Optional[string]    `json:"expectedEffect"`
}

// OfferPatch is a partial update of one OfferBlock.
type OfferPatch struct {
	Audience  layering.Optional[string] `json:"audience"`
	Pain      layering.Optional[string] `json:"pain"`
	Promise   layering.Optional[string] `json:"promise"`
	Mechanism layering.Optional[string] `json:"mechanism"`
	Proof     layering.Optional[string] `json:"proof"`
	WhyNow    layering.Optional[string] `json:"whyNow"`
}
