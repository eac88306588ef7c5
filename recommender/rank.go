package recommender

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"wardrobeapi/languageutil"
)

const (
	MaxResults         = 3
	AdmissionThreshold = 60.0
)

type ScoredOutfit struct {
	Outfit Outfit
	Score  float64
}

// Rank orders candidates by score, keeps the best MaxResults and drops any
// below AdmissionThreshold. Ties keep generation order.
func Rank(scored []ScoredOutfit) []ScoredOutfit {
	ranked := make([]ScoredOutfit, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > MaxResults {
		ranked = ranked[:MaxResults]
	}

	admitted := ranked[:0]
	for _, s := range ranked {
		if s.Score >= AdmissionThreshold {
			admitted = append(admitted, s)
		}
	}
	return admitted
}

// ScoreBand names the qualitative band of a composite score.
func ScoreBand(score float64) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= AdmissionThreshold:
		return "passable"
	default:
		return "needs work"
	}
}

// Explain builds the human readable rationale for an outfit. Missing
// attributes are left out of the narrative.
func Explain(o Outfit, w Weather, score float64, level int) string {
	pref, _ := StyleLevel(level)
	var highlights []string

	top, bottom := o.first(CategoryTop), o.first(CategoryBottom)
	if top != nil && bottom != nil && top.Item.PrimaryColor != "" && bottom.Item.PrimaryColor != "" {
		topColor, bottomColor := top.Item.PrimaryColor, bottom.Item.PrimaryColor
		switch {
		case top.Color == bottom.Color && top.Color != ColorUnknown && top.Color != ColorOther:
			highlights = append(highlights, fmt.Sprintf("Same color family: %s tones keep the look clean and unified", topColor))
		case IsClassicPair(top.Color, bottom.Color):
			highlights = append(highlights, fmt.Sprintf("Classic pairing: %s with %s is harmonious with a sense of depth", topColor, bottomColor))
		default:
			highlights = append(highlights, fmt.Sprintf("Complementary colors: %s against %s adds contrast", topColor, bottomColor))
		}
	}

	if styles := o.distinctStyles(); len(styles) == 1 {
		remark := fmt.Sprintf("Consistent style: a fully %s look", styles[0])
		if pref.Name != "" {
			remark += fmt.Sprintf(" that matches your %s preference", pref.Name)
		}
		highlights = append(highlights, remark)
	}

	temp := strconv.FormatFloat(w.TemperatureC, 'f', -1, 64)
	if o.first(CategoryOuterwear) != nil {
		highlights = append(highlights, fmt.Sprintf("Weather ready: an outer layer suits %s°C", temp))
	} else if w.TemperatureC > 25 {
		highlights = append(highlights, fmt.Sprintf("Light and breezy: an easy outfit for %s°C", temp))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Outfit analysis (score %.1f/100 - %s)", score, ScoreBand(score))
	for _, h := range highlights {
		b.WriteString("\n- ")
		b.WriteString(h)
	}
	if pref.Name != "" {
		fmt.Fprintf(&b, "\nProfile: %s", languageutil.Title(pref.Name))
	}
	return b.String()
}
