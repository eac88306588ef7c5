package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeasonForBoundaries(t *testing.T) {
	cases := []struct {
		temp float64
		want Season
	}{
		{-5, SeasonWinter},
		{14.9, SeasonWinter},
		{15.0, SeasonAutumn},
		{19.9, SeasonAutumn},
		{20.0, SeasonSpring},
		{24.9, SeasonSpring},
		{25.0, SeasonSummer},
		{38, SeasonSummer},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SeasonFor(c.temp), "temp %v", c.temp)
	}
}

func TestFilterEligibleSeasonAndOccasion(t *testing.T) {
	items := prepareAll(
		item(1, CategoryTop, "white", "casual", "", []string{"summer"}, []string{"daily"}),
		item(2, CategoryTop, "white", "casual", "", []string{"winter"}, nil),
		item(3, CategoryBottom, "black", "casual", "", nil, []string{"work"}),
		item(4, CategoryBottom, "black", "casual", "", nil, nil),
	)

	got := FilterEligible(items, SeasonSummer, "日常", DefaultStyleLevel)

	ids := make([]uint, 0, len(got))
	for _, it := range got {
		ids = append(ids, it.Item.ID)
	}
	assert.Equal(t, []uint{1, 4}, ids)
}

func TestFilterEligibleStylePreference(t *testing.T) {
	items := prepareAll(
		item(1, CategoryTop, "red", "romantic", "", nil, nil),
		item(2, CategoryTop, "black", "vintage", "", nil, nil),
		item(3, CategoryTop, "orange", "vintage", "", nil, nil),
	)

	conservative := FilterEligible(items, SeasonSummer, "daily", 1)
	if assert.Len(t, conservative, 1) {
		assert.Equal(t, uint(2), conservative[0].Item.ID)
	}

	// level 3 lets everything through
	assert.Len(t, FilterEligible(items, SeasonSummer, "daily", 3), 3)

	bold := FilterEligible(items, SeasonSummer, "daily", 5)
	assert.Len(t, bold, 3)
}
