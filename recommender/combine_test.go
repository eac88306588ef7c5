package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCombinationsBasePairs(t *testing.T) {
	eligible := prepareAll(summerWardrobe()...)

	outfits := GenerateCombinations(eligible, 28)

	if assert.Len(t, outfits, 1) {
		assert.Len(t, outfits[0].Items, 3)
		assert.Equal(t, CategoryTop, outfits[0].Items[0].Item.Category)
		assert.Equal(t, CategoryBottom, outfits[0].Items[1].Item.Category)
		assert.Equal(t, CategoryShoes, outfits[0].Items[2].Item.Category)
	}
}

func TestGenerateCombinationsLayersWhenCold(t *testing.T) {
	eligible := prepareAll(
		item(1, CategoryTop, "white", "", "", nil, nil),
		item(2, CategoryTop, "gray", "", "", nil, nil),
		item(3, CategoryBottom, "black", "", "", nil, nil),
		item(4, CategoryBottom, "navy", "", "", nil, nil),
		item(5, CategoryOuterwear, "beige", "", "wool", nil, nil),
	)

	cold := GenerateCombinations(eligible, 5)
	assert.Len(t, cold, 8)
	for _, o := range cold[:4] {
		assert.Nil(t, o.first(CategoryOuterwear))
	}
	for _, o := range cold[4:] {
		assert.NotNil(t, o.first(CategoryOuterwear))
		assert.Len(t, o.Items, 3)
	}

	// no layering at or above the threshold
	assert.Len(t, GenerateCombinations(eligible, LayeringBelowTemp), 4)
}

func TestGenerateCombinationsIsBounded(t *testing.T) {
	var items []ClothingItem
	for i := uint(0); i < 6; i++ {
		items = append(items,
			item(10+i, CategoryTop, "white", "", "", nil, nil),
			item(20+i, CategoryBottom, "black", "", "", nil, nil),
			item(30+i, CategoryOuterwear, "gray", "", "", nil, nil),
			item(40+i, CategoryShoes, "white", "", "", nil, nil),
		)
	}

	outfits := GenerateCombinations(prepareAll(items...), 0)

	assert.Len(t, outfits, MaxCandidates)
	for _, o := range outfits {
		assert.GreaterOrEqual(t, len(o.Items), 2)
		assert.LessOrEqual(t, len(o.Items), 4)
		// only the first shoe is ever used
		assert.Equal(t, uint(40), o.first(CategoryShoes).Item.ID)
	}
}

func TestGenerateCombinationsNeedsTopAndBottom(t *testing.T) {
	eligible := prepareAll(
		item(1, CategoryTop, "white", "", "", nil, nil),
		item(2, CategoryTop, "black", "", "", nil, nil),
		item(3, CategoryOuterwear, "gray", "", "", nil, nil),
	)
	assert.Empty(t, GenerateCombinations(eligible, 5))
}
