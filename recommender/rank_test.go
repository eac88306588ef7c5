package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredWith(scores ...float64) []ScoredOutfit {
	out := make([]ScoredOutfit, 0, len(scores))
	for i, s := range scores {
		o := outfitOf(item(uint(i+1), CategoryTop, "", "", "", nil, nil))
		out = append(out, ScoredOutfit{Outfit: o, Score: s})
	}
	return out
}

func TestRankKeepsTopThreeAboveThreshold(t *testing.T) {
	ranked := Rank(scoredWith(61, 90, 59.9, 75, 80))

	require.Len(t, ranked, 3)
	assert.Equal(t, 90.0, ranked[0].Score)
	assert.Equal(t, 80.0, ranked[1].Score)
	assert.Equal(t, 75.0, ranked[2].Score)
}

func TestRankThresholdAppliesAfterTruncation(t *testing.T) {
	ranked := Rank(scoredWith(70, 55, 60, 40))

	require.Len(t, ranked, 2)
	assert.Equal(t, 70.0, ranked[0].Score)
	assert.Equal(t, 60.0, ranked[1].Score)
}

func TestRankStableOnTies(t *testing.T) {
	in := scoredWith(80, 80, 80)
	ranked := Rank(in)

	require.Len(t, ranked, 3)
	for i := range ranked {
		assert.Equal(t, uint(i+1), ranked[i].Outfit.Items[0].Item.ID)
	}
	// input untouched
	assert.Equal(t, 80.0, in[0].Score)
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil))
	assert.Empty(t, Rank(scoredWith(10, 20)))
}

func TestScoreBand(t *testing.T) {
	assert.Equal(t, "excellent", ScoreBand(80))
	assert.Equal(t, "good", ScoreBand(79.9))
	assert.Equal(t, "passable", ScoreBand(60))
	assert.Equal(t, "needs work", ScoreBand(59.9))
}

func TestExplainSummerOutfit(t *testing.T) {
	o := outfitOf(summerWardrobe()...)

	text := Explain(o, Weather{TemperatureC: 28, Main: "Clear"}, 86.6, 3)

	assert.Contains(t, text, "86.6/100")
	assert.Contains(t, text, "Classic pairing: white with black")
	assert.Contains(t, text, "Consistent style: a fully casual look")
	assert.Contains(t, text, "Light and breezy")
	assert.Contains(t, text, "28°C")
	assert.NotContains(t, text, "outer layer")
	assert.Contains(t, text, "Profile: Everyday Fashion")
}

func TestExplainLayeredOutfit(t *testing.T) {
	o := outfitOf(
		item(1, CategoryTop, "navy", "casual", "", nil, nil),
		item(2, CategoryBottom, "deep blue", "formal", "", nil, nil),
		item(3, CategoryOuterwear, "", "", "", nil, nil),
	)

	text := Explain(o, Weather{TemperatureC: 7.5}, 70, 3)

	assert.Contains(t, text, "Same color family: navy tones")
	assert.NotContains(t, text, "Consistent style")
	assert.Contains(t, text, "an outer layer suits 7.5°C")
	assert.NotContains(t, text, "Light and breezy")
}

func TestExplainSkipsMissingColors(t *testing.T) {
	o := outfitOf(
		item(1, CategoryTop, "", "", "", nil, nil),
		item(2, CategoryBottom, "red", "", "", nil, nil),
	)
	text := Explain(o, Weather{TemperatureC: 18}, 61, 2)

	assert.NotContains(t, text, "color")
	assert.NotContains(t, text, "Classic pairing")
}
