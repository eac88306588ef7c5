package recommender

// Bounds on combination fan-out. They keep generation cost independent of
// inventory size.
const (
	baseTopLimit      = 3
	baseBottomLimit   = 3
	layerTopLimit     = 2
	layerBottomLimit  = 2
	layerOuterLimit   = 2
	MaxCandidates     = 10
	LayeringBelowTemp = 22.0
)

func partition(items []*PreparedItem) map[Category][]*PreparedItem {
	byCategory := make(map[Category][]*PreparedItem)
	for _, it := range items {
		byCategory[it.Item.Category] = append(byCategory[it.Item.Category], it)
	}
	return byCategory
}

func head(items []*PreparedItem, n int) []*PreparedItem {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// GenerateCombinations builds candidate outfits from eligible items. Base
// top+bottom pairs come first, then layered combinations with outerwear when
// it is colder than LayeringBelowTemp. The first shoe is appended to every
// outfit when one exists. At most MaxCandidates are returned.
func GenerateCombinations(eligible []*PreparedItem, tempC float64) []Outfit {
	byCategory := partition(eligible)
	tops := byCategory[CategoryTop]
	bottoms := byCategory[CategoryBottom]
	outerwear := byCategory[CategoryOuterwear]

	var shoe *PreparedItem
	if shoes := byCategory[CategoryShoes]; len(shoes) > 0 {
		shoe = shoes[0]
	}
	build := func(items ...*PreparedItem) Outfit {
		if shoe != nil {
			items = append(items, shoe)
		}
		return Outfit{Items: items}
	}

	var outfits []Outfit
	for _, top := range head(tops, baseTopLimit) {
		for _, bottom := range head(bottoms, baseBottomLimit) {
			outfits = append(outfits, build(top, bottom))
		}
	}

	if tempC < LayeringBelowTemp && len(outerwear) > 0 {
		for _, top := range head(tops, layerTopLimit) {
			for _, bottom := range head(bottoms, layerBottomLimit) {
				for _, outer := range head(outerwear, layerOuterLimit) {
					outfits = append(outfits, build(top, bottom, outer))
				}
			}
		}
	}

	if len(outfits) > MaxCandidates {
		outfits = outfits[:MaxCandidates]
	}
	return outfits
}
