package booster

const (
	// StorageKey is the fixed key the worksheet snapshot is stored under.
	StorageKey = "ultima_pre_booster_state_v1"

	// SchemaVersion is the envelope version written by this package. Version 1
	// is the bare, id-less document.
	SchemaVersion = 2

	MinProducts = 3
	MaxProducts = 10
	LeverCount  = 3

	MinScore = 1
	MaxScore = 10
)

// DefaultState returns the canonical empty worksheet: empty text, absent
// numbers, three blank products and three blank levers. Ids are left empty;
// the Store stamps them.
func DefaultState() BoosterState {
	products := make([]ProductItem, MinProducts)
	for i := range products {
		products[i] = DefaultProductItem()
	}
	levers := make([]GrowthLever, LeverCount)
	for i := range levers {
		levers[i] = DefaultGrowthLever()
	}
	return BoosterState{
		Product: ProductLab{
			PremiumOffer: DefaultOfferBlock(),
			MassOffer:    DefaultOfferBlock(),
			Products:     products,
		},
		Economy: EconomyLab{
			MainLevers: levers,
		},
	}
}

func DefaultOfferBlock() OfferBlock {
	return OfferBlock{}
}

func DefaultProductItem() ProductItem {
	return ProductItem{}
}

func DefaultGrowthLever() GrowthLever {
	return GrowthLever{Area: AreaNone}
}

// LeverAreas lists the valid non-empty lever areas in display order.
func LeverAreas() []LeverArea {
	return []LeverArea{AreaMarketing, AreaSales, AreaProduct, AreaTeam, AreaFinance, AreaOps}
}

// Valid reports whether a is empty or one of LeverAreas.
func (a LeverArea) Valid() bool {
	if a == AreaNone {
		return true
	}
	for _, area := range LeverAreas() {
		if a == area {
			return true
		}
	}
	return false
}

// Sections lists the worksheet sections in display order.
func Sections() []Section {
	return []Section{SectionProduct, SectionEconomy, SectionStrategy}
}

// ParseSection maps a section name onto a Section.
func ParseSection(name string) (Section, bool) {
	for _, section := range Sections() {
		if string(section) == name {
			return section, true
		}
	}
	return "", false
}

var leverAreaLabels = map[LeverArea]string{
	AreaMarketing: "Marketing",
	AreaSales:     "Sales",
	AreaProduct:   "Product",
	AreaTeam:      "Team",
	AreaFinance:   "Finance",
	AreaOps:       "Operations",
}

// Label returns the display name of a, or "" for AreaNone and unknown areas.
func (a LeverArea) Label() string {
	return leverAreaLabels[a]
}
