package recommender

import "strings"

const (
	colorWeight    = 0.30
	styleWeight    = 0.25
	weatherWeight  = 0.25
	occasionWeight = 0.20

	neutralSubScore = 50.0
	maxScore        = 100.0
)

// ScoreOutfit returns the weighted composite score in [0, 100]. Outfits of
// fewer than two items score 0.
func ScoreOutfit(o Outfit, w Weather, occasion string, level int) float64 {
	if len(o.Items) < 2 {
		return 0
	}
	pref, _ := StyleLevel(level)
	total := colorWeight*ColorHarmony(o) +
		styleWeight*StyleConsistency(o, pref) +
		weatherWeight*WeatherFit(o, w) +
		occasionWeight*OccasionFit(o, occasion)
	return clamp(total)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > maxScore {
		return maxScore
	}
	return v
}

// ColorHarmony averages pairwise color compatibility over all item pairs.
func ColorHarmony(o Outfit) float64 {
	var sum float64
	var pairs int
	for i := 0; i < len(o.Items); i++ {
		for j := i + 1; j < len(o.Items); j++ {
			sum += FamilyCompatibility(o.Items[i].Color, o.Items[j].Color)
			pairs++
		}
	}
	if pairs == 0 {
		return neutralSubScore
	}
	return sum / float64(pairs)
}

// StyleConsistency blends how well item styles match the preference profile
// with how uniform they are.
func StyleConsistency(o Outfit, pref StylePreference) float64 {
	var matchSum float64
	var styled int
	for _, it := range o.Items {
		if it.Style == "" {
			continue
		}
		styled++
		if pref.prefersStyle(it.Style) {
			matchSum += 100
		} else {
			matchSum += 40
		}
	}
	if styled == 0 {
		return neutralSubScore
	}

	distinct := len(o.distinctStyles())
	bonus := 100.0
	if distinct > 1 {
		bonus = 100 - 15*float64(distinct-1)
		if bonus < 60 {
			bonus = 60
		}
	}
	return (matchSum/float64(styled) + bonus) / 2
}

// WeatherFit rewards materials, categories and season tags that suit the temperature band.
func WeatherFit(o Outfit, w Weather) float64 {
	if len(o.Items) == 0 {
		return neutralSubScore
	}
	temp := w.TemperatureC
	rainy := w.rainy()

	var sum float64
	for _, it := range o.Items {
		score := 50.0
		cat := it.Item.Category
		switch {
		case temp < 10:
			if cat == CategoryOuterwear || materialHas(it.Material, warmMaterials) {
				score += 25
			}
			if it.Seasons.Has(string(SeasonWinter)) {
				score += 15
			}
		case temp < 18:
			if cat == CategoryOuterwear || cat == CategoryTop || materialHas(it.Material, longSleeveMaterials) {
				score += 20
			}
			if it.Seasons.HasAny(string(SeasonAutumn), string(SeasonSpring)) {
				score += 15
			}
		case temp < 26:
			if it.Seasons.HasAny(string(SeasonSpring), string(SeasonAutumn)) {
				score += 20
			}
		default:
			if materialHas(it.Material, breathableMaterials) {
				score += 25
			}
			if it.Seasons.Has(string(SeasonSummer)) {
				score += 15
			}
		}
		if rainy && (cat == CategoryOuterwear || materialHas(it.Material, waterproofMaterials)) {
			score += 10
		}
		if score > maxScore {
			score = maxScore
		}
		sum += score
	}
	return sum / float64(len(o.Items))
}

func materialHas(material string, keywords []string) bool {
	if material == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(material, kw) {
			return true
		}
	}
	return false
}

// BroadenOccasion returns the occasion tags that satisfy a requested occasion.
func BroadenOccasion(occasion string) []string {
	occasion = CanonicalTag(occasion)
	if tags, ok := occasionBroadening[occasion]; ok {
		return tags
	}
	return []string{occasion}
}

// OccasionFit scores each item 100 on a broadened occasion match, 70 when it
// declares no occasions and 40 otherwise.
func OccasionFit(o Outfit, occasion string) float64 {
	if len(o.Items) == 0 {
		return neutralSubScore
	}
	accepted := BroadenOccasion(occasion)
	var sum float64
	for _, it := range o.Items {
		switch {
		case it.Occasions.HasAny(accepted...):
			sum += 100
		case it.Occasions.Empty():
			sum += 70
		default:
			sum += 40
		}
	}
	return sum / float64(len(o.Items))
}
