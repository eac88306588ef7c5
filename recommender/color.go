package recommender

import (
	"strings"
	"unicode/utf8"

	"wardrobeapi/languageutil"
)

// NormalizeColor maps a free-text color label to its canonical family.
// Empty labels are unknown, unrecognized labels are other. Canonical family
// names map to themselves.
func NormalizeColor(label string) ColorFamily {
	color := languageutil.Fold(label)
	if color == "" {
		return ColorUnknown
	}
	if _, ok := canonicalFamilies[ColorFamily(color)]; ok {
		return ColorFamily(color)
	}
	if _, ok := unknownColorLabels[color]; ok {
		return ColorUnknown
	}

	// Short labels are only matched exactly or by containing an alias, so "米"
	// stays beige instead of being swallowed by "米白" and "ow" is not yellow.
	reverse := utf8.RuneCountInString(color) >= minReverseRunes(color)
	for _, group := range colorAliases {
		for _, alias := range group.aliases {
			if strings.Contains(color, alias) || (reverse && strings.Contains(alias, color)) {
				return group.family
			}
		}
	}

	for _, kw := range colorKeywordRoots {
		if strings.Contains(color, kw.root) {
			return kw.family
		}
	}
	return ColorOther
}

// minReverseRunes is the shortest label that may match as a fragment of a
// longer alias. Latin fragments need three letters, CJK ones two characters.
func minReverseRunes(label string) int {
	for i := 0; i < len(label); i++ {
		if label[i] >= utf8.RuneSelf {
			return 2
		}
	}
	return 3
}

// FamilyCompatibility scores two already normalized families.
func FamilyCompatibility(a, b ColorFamily) float64 {
	if a == ColorUnknown || b == ColorUnknown {
		return scoreUnknownColor
	}
	if a == b {
		return scoreSameFamily
	}
	pair := familyPair{a, b}
	if _, ok := classicPairs[pair]; ok {
		return scoreClassicPair
	}
	_, neutralA := neutralFamilies[a]
	_, neutralB := neutralFamilies[b]
	if neutralA || neutralB {
		return scoreNeutralPair
	}
	if _, ok := contrastPairs[pair]; ok {
		return scoreContrastPair
	}
	if _, ok := adjacentPairs[pair]; ok {
		return scoreAdjacentPair
	}
	return scoreBaselinePair
}

// ColorCompatibility scores how well two color labels go together, 50 to 90.
func ColorCompatibility(a, b string) float64 {
	return FamilyCompatibility(NormalizeColor(a), NormalizeColor(b))
}

// IsClassicPair reports whether two families form one of the curated classic pairings.
func IsClassicPair(a, b ColorFamily) bool {
	_, ok := classicPairs[familyPair{a, b}]
	return ok
}
