package recommender

// SeasonFor derives the season from a temperature in Celsius. Each band is
// half-open, so a value exactly on a threshold belongs to the warmer season.
func SeasonFor(tempC float64) Season {
	switch {
	case tempC < 15:
		return SeasonWinter
	case tempC < 20:
		return SeasonAutumn
	case tempC < 25:
		return SeasonSpring
	default:
		return SeasonSummer
	}
}

// FilterEligible keeps the items that fit the season, the occasion and the
// style level. Empty season or occasion tags mean the item fits anything.
// Level 3 accepts every color and style. Input order is preserved.
func FilterEligible(items []*PreparedItem, season Season, occasion string, level int) []*PreparedItem {
	pref, _ := StyleLevel(level)
	occasion = CanonicalTag(occasion)

	eligible := make([]*PreparedItem, 0, len(items))
	for _, it := range items {
		seasonOK := it.Seasons.Empty() || it.Seasons.Has(string(season))
		occasionOK := it.Occasions.Empty() || it.Occasions.Has(occasion)
		preferenceOK := pref.prefersStyle(it.Style) || pref.prefersColor(it.Color) || level == DefaultStyleLevel
		if seasonOK && occasionOK && preferenceOK {
			eligible = append(eligible, it)
		}
	}
	return eligible
}
