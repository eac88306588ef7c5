package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColor(t *testing.T) {
	cases := map[string]ColorFamily{
		"":           ColorUnknown,
		"  ":         ColorUnknown,
		"未知":         ColorUnknown,
		"black":      ColorBlack,
		"Navy":       ColorBlue,
		"深藍色":        ColorBlue,
		"米":          ColorBeige,
		"米白":         ColorWhite,
		"khaki":      ColorBeige,
		"酒紅":         ColorRed,
		"浅蓝":         ColorBlue,
		"ＷＨＩＴＥ":      ColorWhite,
		"chartreuse": ColorOther,
		"ow":         ColorOther,
		"ta":         ColorOther,
		"in":         ColorOther,
		"indi":       ColorBlue,
		"海軍":         ColorBlue,
	}
	for label, want := range cases {
		assert.Equal(t, want, NormalizeColor(label), "label %q", label)
	}
}

func TestColorCompatibilityIsSymmetricAndBounded(t *testing.T) {
	labels := []string{"black", "white", "gray", "navy", "red", "green", "yellow", "purple", "brown", "beige", "orange", "", "chartreuse"}
	for _, a := range labels {
		for _, b := range labels {
			ab := ColorCompatibility(a, b)
			assert.Equal(t, ab, ColorCompatibility(b, a), "%q/%q", a, b)
			assert.GreaterOrEqual(t, ab, 50.0)
			assert.LessOrEqual(t, ab, 90.0)
		}
	}
}

func TestColorCompatibilityRules(t *testing.T) {
	assert.Equal(t, 85.0, ColorCompatibility("red", "紅色"))
	assert.Equal(t, 90.0, ColorCompatibility("black", "white"))
	assert.Equal(t, 90.0, ColorCompatibility("beige", "olive"))
	assert.Equal(t, 75.0, ColorCompatibility("black", "red"))
	assert.Equal(t, 70.0, ColorCompatibility("red", "green"))
	assert.Equal(t, 80.0, ColorCompatibility("blue", "green"))
	assert.Equal(t, 60.0, ColorCompatibility("red", "purple"))
	assert.Equal(t, 50.0, ColorCompatibility("", "black"))
	assert.Equal(t, 50.0, ColorCompatibility("", ""))
}

func TestNormalizeColorKeepsCanonicalFamilies(t *testing.T) {
	for family := range canonicalFamilies {
		assert.Equal(t, family, NormalizeColor(string(family)), "family %q", family)
		assert.Equal(t, family, NormalizeColor(string(NormalizeColor(string(family)))))
	}
}

func TestEqualLabelsScoreSameFamily(t *testing.T) {
	labels := []string{"chartreuse", "Navy", "ＷＨＩＴＥ"}
	for _, group := range colorAliases {
		labels = append(labels, group.aliases...)
	}
	for _, label := range labels {
		assert.Equal(t, 85.0, ColorCompatibility(label, label), "label %q", label)
	}
}
