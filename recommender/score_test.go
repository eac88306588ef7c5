package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreOutfitSummerScenario(t *testing.T) {
	o := outfitOf(summerWardrobe()...)
	w := Weather{TemperatureC: 28, Main: "Clear"}

	assert.InDelta(t, 88.33, ColorHarmony(o), 0.01)
	assert.InDelta(t, 100, StyleConsistency(o, styleLevels[3]), 0.01)
	assert.InDelta(t, 68.33, WeatherFit(o, w), 0.01)
	assert.InDelta(t, 90, OccasionFit(o, "daily"), 0.01)

	score := ScoreOutfit(o, w, "daily", 3)
	assert.InDelta(t, 86.58, score, 0.01)
}

func TestScoreOutfitTooSmall(t *testing.T) {
	o := outfitOf(item(1, CategoryTop, "white", "casual", "", nil, nil))
	assert.Equal(t, 0.0, ScoreOutfit(o, Weather{TemperatureC: 20}, "daily", 3))
}

func TestScoreOutfitStaysInRange(t *testing.T) {
	o := outfitOf(
		item(1, CategoryOuterwear, "black", "formal", "wool waterproof", []string{"winter"}, []string{"formal"}),
		item(2, CategoryTop, "black", "formal", "cashmere", []string{"winter"}, []string{"work"}),
		item(3, CategoryBottom, "black", "formal", "wool", []string{"winter"}, []string{"formal"}),
	)
	for _, temp := range []float64{-20, 5, 12, 22, 35} {
		for _, main := range []string{"Clear", "Rain", "Snow"} {
			for level := MinStyleLevel; level <= MaxStyleLevel; level++ {
				s := ScoreOutfit(o, Weather{TemperatureC: temp, Main: main}, "formal", level)
				assert.GreaterOrEqual(t, s, 0.0)
				assert.LessOrEqual(t, s, 100.0)
			}
		}
	}
}

func TestWeatherFitRainBonusIsCapped(t *testing.T) {
	coat := outfitOf(item(1, CategoryOuterwear, "", "", "wool", []string{"winter"}, nil))
	assert.Equal(t, 90.0, WeatherFit(coat, Weather{TemperatureC: 2, Main: "Clear"}))
	assert.Equal(t, 100.0, WeatherFit(coat, Weather{TemperatureC: 2, Main: "Rain"}))
}

func TestStyleConsistencyMixedStyles(t *testing.T) {
	o := outfitOf(
		item(1, CategoryTop, "", "romantic", "", nil, nil),
		item(2, CategoryBottom, "", "vintage", "", nil, nil),
	)
	// (40 + 85) / 2
	assert.Equal(t, 62.5, StyleConsistency(o, styleLevels[3]))

	unstyled := outfitOf(
		item(1, CategoryTop, "", "", "", nil, nil),
		item(2, CategoryBottom, "", "", "", nil, nil),
	)
	assert.Equal(t, 50.0, StyleConsistency(unstyled, styleLevels[3]))
}

func TestBroadenOccasion(t *testing.T) {
	assert.Equal(t, []string{"formal", "work"}, BroadenOccasion("正式"))
	assert.Equal(t, []string{"date", "daily"}, BroadenOccasion("date"))
	assert.Equal(t, []string{"party"}, BroadenOccasion("派對"))
}

func TestOccasionFitBroadens(t *testing.T) {
	o := outfitOf(
		item(1, CategoryTop, "", "", "", nil, []string{"work"}),
		item(2, CategoryBottom, "", "", "", nil, []string{"sport"}),
		item(3, CategoryShoes, "", "", "", nil, nil),
	)
	// 100 (work satisfies formal) + 40 + 70
	assert.InDelta(t, 70, OccasionFit(o, "formal"), 0.001)
}
