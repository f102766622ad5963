package review

import (
	"strings"

	"github.com/Conceptual-Machines/reelmate-api/internal/models"
)

const (
	maxGreenFlags   = 5
	maxDealbreakers = 4
	maxTradeoffs    = 4
	maxReviewLevers = 6
	maxUsuallyLike  = 5
	maxUsuallyAvoid = 4
	maxDependsOn    = 3
)

// SanitizeTasteProfile cleans every text field, caps list lengths and
// normalises confidence to low, medium or high.
func SanitizeTasteProfile(p models.TasteProfile) models.TasteProfile {
	return models.TasteProfile{
		PersonaLabel:   CleanText(p.PersonaLabel),
		TasteThesis:    CleanText(p.TasteThesis),
		GreenFlags:     cleanList(p.GreenFlags, maxGreenFlags),
		Dealbreakers:   cleanList(p.Dealbreakers, maxDealbreakers),
		Tradeoffs:      cleanList(p.Tradeoffs, maxTradeoffs),
		ReviewLevers:   cleanList(p.ReviewLevers, maxReviewLevers),
		UsuallyLike:    cleanList(p.UsuallyLike, maxUsuallyLike),
		UsuallyAvoid:   cleanList(p.UsuallyAvoid, maxUsuallyAvoid),
		DependsOn:      cleanList(p.DependsOn, maxDependsOn),
		Recommendation: CleanText(p.Recommendation),
		Confidence:     normalizeConfidence(p.Confidence),
	}
}

func normalizeConfidence(c string) string {
	switch strings.ToLower(CleanText(c)) {
	case models.ConfidenceHigh:
		return models.ConfidenceHigh
	case models.ConfidenceMedium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func tasteFromRaw(raw RawObject) models.TasteProfile {
	return models.TasteProfile{
		PersonaLabel:   asString(raw["personaLabel"]),
		TasteThesis:    asString(raw["tasteThesis"]),
		GreenFlags:     asStringList(raw["greenFlags"]),
		Dealbreakers:   asStringList(raw["dealbreakers"]),
		Tradeoffs:      asStringList(raw["tradeoffs"]),
		ReviewLevers:   asStringList(raw["reviewLevers"]),
		UsuallyLike:    asStringList(raw["usuallyLike"]),
		UsuallyAvoid:   asStringList(raw["usuallyAvoid"]),
		DependsOn:      asStringList(raw["dependsOn"]),
		Recommendation: asString(raw["recommendation"]),
		Confidence:     asString(raw["confidence"]),
	}
}
