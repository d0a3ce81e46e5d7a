package booster

import (
	"fmt"
	"strings"
)

// OfferPhrase condenses an offer block into one positioning sentence. It
// needs audience, pain, mechanism and promise; otherwise it returns false.
func OfferPhrase(block OfferBlock) (string, bool) {
	audience := strings.TrimSpace(block.Audience)
	pain := strings.TrimSpace(block.Pain)
	mechanism := strings.TrimSpace(block.Mechanism)
	promise := strings.TrimSpace(block.Promise)
	if audience == "" || pain == "" || mechanism == "" || promise == "" {
		return "", false
	}
	return fmt.Sprintf("We help %s solve %q through %s, so they get %s.", audience, pain, mechanism, promise), true
}

// Offer returns the block selected by kind.
func (p ProductLab) Offer(kind OfferKind) (OfferBlock, bool) {
	switch kind {
	case OfferPremium:
		return p.PremiumOffer, true
	case OfferMass:
		return p.MassOffer, true
	}
	return OfferBlock{}, false
}
