package booster

// BoosterState is the root worksheet aggregate. Each section is independent;
// no value is shared between them.
type BoosterState struct {
	Product  ProductLab  `json:"product"`
	Economy  EconomyLab  `json:"economy"`
	Strategy StrategyLab `json:"strategy"`
}

// ProductLab holds the product-clarity exercise.
type ProductLab struct {
	TargetAudienceMostProfitable string `json:"targetAudienceMostProfitable"`
	RealValue                    string `json:"realValue"`
	Top3Pains                    string `json:"top3Pains"`
	Products80Now                string `json:"products80Now"`
	Products80Future             string `json:"products80Future"`
	WhatMarketDoesntNeed         string `json:"whatMarketDoesntNeed"`
	SevenSecondPitch             string `json:"sevenSecondPitch"`

	PremiumOffer OfferBlock `json:"premiumOffer"`
	MassOffer    OfferBlock `json:"massOffer"`

	Products []ProductItem `json:"products" validate:"min=3,max=10,dive"`
}

// OfferBlock describes one offer positioning.
type OfferBlock struct {
	Audience  string `json:"audience"`
	Pain      string `json:"pain"`
	Promise   string `json:"promise"`
	Mechanism string `json:"mechanism"`
	Proof     string `json:"proof"`
	WhyNow    string `json:"whyNow"`
}

// ProductItem is one row of the product calculator. Numeric inputs are nil
// when absent.
type ProductItem struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Cost       *float64 `json:"cost"`
	Price      *float64 `json:"price"`
	AvgTime    *float64 `json:"avgTime"`
	RepeatRate *float64 `json:"repeatRate"`
}

// EconomyLab holds the unit-economics exercise. Profit and MarginPercent are
// derived from the four inputs and cannot be patched directly.
type EconomyLab struct {
	Revenue *float64 `json:"revenue"`
	Cogs    *float64 `json:"cogs"`
	Opex    *float64 `json:"opex"`
	Payroll *float64 `json:"payroll"`

	Profit        *float64 `json:"profit"`
	MarginPercent *float64 `json:"marginPercent"`

	MainLevers []GrowthLever `json:"mainLevers" validate:"len=3,dive"`
}

// LeverArea is the business area a growth lever targets.
type LeverArea string

const (
	AreaNone      LeverArea = ""
	AreaMarketing LeverArea = "marketing"
	AreaSales     LeverArea = "sales"
	AreaProduct   LeverArea = "product"
	AreaTeam      LeverArea = "team"
	AreaFinance   LeverArea = "finance"
	AreaOps       LeverArea = "ops"
)

// GrowthLever is one of the three main levers of the economy section.
type GrowthLever struct {
	ID             string    `json:"id"`
	Area           LeverArea `json:"area" validate:"omitempty,lever_area"`
	Problem        string    `json:"problem"`
	Hypothesis     string    `json:"hypothesis"`
	ExpectedEffect string    `json:"expectedEffect"`
}

// StrategyLab holds the strategic self-assessment. Scores are nil when absent
// and otherwise in [MinScore, MaxScore].
type StrategyLab struct {
	ScoreSales     *int `json:"scoreSales" validate:"omitempty,min=1,max=10"`
	ScoreMarketing *int `json:"scoreMarketing" validate:"omitempty,min=1,max=10"`
	ScoreProduct   *int `json:"scoreProduct" validate:"omitempty,min=1,max=10"`
	ScoreTeam      *int `json:"scoreTeam" validate:"omitempty,min=1,max=10"`
	ScoreFinance   *int `json:"scoreFinance" validate:"omitempty,min=1,max=10"`
	ScoreOps       *int `json:"scoreOps" validate:"omitempty,min=1,max=10"`

	TargetMoney   string `json:"targetMoney"`
	TargetTeam    string `json:"targetTeam"`
	TargetProduct string `json:"targetProduct"`
	TargetSystems string `json:"targetSystems"`
	TargetRole    string `json:"targetRole"`
}

// Section names one of the three worksheet sections.
type Section string

const (
	SectionProduct  Section = "product"
	SectionEconomy  Section = "economy"
	SectionStrategy Section = "strategy"
)

// OfferKind selects one of the two offer blocks.
type OfferKind string

const (
	OfferPremium OfferKind = "premium"
	OfferMass    OfferKind = "mass"
)
