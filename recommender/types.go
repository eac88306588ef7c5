package recommender

import (
	"errors"
	"strings"

	"wardrobeapi/languageutil"
)

// ErrInvalidStyleLevel is returned when a style level outside 1-5 reaches the engine.
var ErrInvalidStyleLevel = errors.New("style level must be between 1 and 5")

type Category string

const (
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryOuterwear Category = "outerwear"
	CategoryShoes     Category = "shoes"
	CategoryAccessory Category = "accessory"
	CategoryOther     Category = "other"
)

// Categories lists every garment category in display order.
var Categories = []Category{
	CategoryTop, CategoryBottom, CategoryOuterwear, CategoryShoes, CategoryAccessory, CategoryOther,
}

// ParseCategory maps a stored or user supplied label onto a Category.
// Unrecognized labels fall into CategoryOther.
func ParseCategory(label string) Category {
	folded := languageutil.Fold(label)
	if c, ok := categoryAliases[folded]; ok {
		return c
	}
	return CategoryOther
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// AllSeasons is used when an item has no seasonal restriction worth recording.
var AllSeasons = []Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter}

// ClothingItem is the read-only snapshot of an inventory item handed to the engine.
type ClothingItem struct {
	ID           uint      `json:"id"`
	OwnerID      uint      `json:"owner_id"`
	Name         string    `json:"name"`
	Category     Category  `json:"category"`
	PrimaryColor string    `json:"primary_color"`
	Style        string    `json:"style"`
	Material     string    `json:"material"`
	Seasons      Attribute `json:"suitable_seasons"`
	Occasions    Attribute `json:"suitable_occasions"`
	UsageCount   int       `json:"usage_count"`
	ImageURL     *string   `json:"image_url,omitempty"`
}

// Weather carries the weather signals the engine consumes. Humidity, wind speed
// and description only feed explanation text.
type Weather struct {
	TemperatureC float64 `json:"temperature"`
	Main         string  `json:"weather_main"`
	Description  string  `json:"weather_description,omitempty"`
	Humidity     float64 `json:"humidity,omitempty"`
	WindSpeed    float64 `json:"wind_speed,omitempty"`
}

func (w Weather) rainy() bool {
	_, ok := rainConditions[strings.ToLower(strings.TrimSpace(w.Main))]
	return ok
}

// PreparedItem is a ClothingItem with its free-text attributes normalized once per request.
type PreparedItem struct {
	Item      ClothingItem
	Color     ColorFamily
	Style     string
	Material  string
	Seasons   TagSet
	Occasions TagSet
	// Malformed is set when a stored tag field had to be recovered by delimiter splitting.
	Malformed bool
}

// Prepare normalizes the attribute fields of item.
func Prepare(item ClothingItem) *PreparedItem {
	seasons := NormalizeAttribute(item.Seasons)
	occasions := NormalizeAttribute(item.Occasions)
	return &PreparedItem{
		Item:      item,
		Color:     NormalizeColor(item.PrimaryColor),
		Style:     CanonicalTag(item.Style),
		Material:  languageutil.Fold(item.Material),
		Seasons:   seasons.Tags,
		Occasions: occasions.Tags,
		Malformed: seasons.Fallback || occasions.Fallback,
	}
}

// Outfit is a candidate combination of 2-4 prepared items.
type Outfit struct {
	Items []*PreparedItem
}

func (o Outfit) first(c Category) *PreparedItem {
	for _, it := range o.Items {
		if it.Item.Category == c {
			return it
		}
	}
	return nil
}

func (o Outfit) distinctStyles() []string {
	var styles []string
	seen := map[string]bool{}
	for _, it := range o.Items {
		if it.Style == "" || seen[it.Style] {
			continue
		}
		seen[it.Style] = true
		styles = append(styles, it.Style)
	}
	return styles
}

// RankedOutfit is a surfaced recommendation.
type RankedOutfit struct {
	ID          string         `json:"id"`
	Items       []ClothingItem `json:"items"`
	Score       float64        `json:"score"`
	Explanation string         `json:"explanation"`
}

// Reason tags why a recommendation result is empty. ReasonOK means outfits were found.
type Reason string

const (
	ReasonOK                    Reason = "ok"
	ReasonInsufficientInventory Reason = "insufficient_inventory"
	ReasonNoEligibleItems       Reason = "no_eligible_items"
	ReasonNoViableCombinations  Reason = "no_viable_combinations"
	ReasonBelowThreshold        Reason = "below_threshold"
	ReasonWeatherUnavailable    Reason = "weather_unavailable"
)

type Result struct {
	Outfits             []RankedOutfit `json:"data"`
	Reason              Reason         `json:"reason"`
	Message             string         `json:"message,omitempty"`
	Season              Season         `json:"season,omitempty"`
	CandidateCount      int            `json:"candidate_count"`
	MalformedAttributes int            `json:"-"`
}

// Empty reports whether no outfit was surfaced.
func (r Result) Empty() bool {
	return len(r.Outfits) == 0
}
