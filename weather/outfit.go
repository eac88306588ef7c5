package weather

import "wardrobeapi/recommender"

// OutfitContext is the dressing-oriented reading of a Report.
type OutfitContext struct {
	Temperature         float64                           `json:"temperature"`
	FeelsLike           float64                           `json:"feels_like"`
	Humidity            float64                           `json:"humidity"`
	WindSpeed           float64                           `json:"wind_speed"`
	Main                string                            `json:"weather_main"`
	Description         string                            `json:"weather_description"`
	Icon                string                            `json:"weather_icon"`
	TemperatureCategory string                            `json:"temperature_category"`
	Condition           string                            `json:"weather_condition"`
	Suggestions         map[recommender.Category][]string `json:"clothing_suggestions"`
	ComfortLevel        string                            `json:"comfort_level"`
}

func (r *Report) OutfitContext() OutfitContext {
	return OutfitContext{
		Temperature:         r.Temperature,
		FeelsLike:           r.FeelsLike,
		Humidity:            r.Humidity,
		WindSpeed:           r.WindSpeed,
		Main:                r.Main,
		Description:         r.Description,
		Icon:                r.Icon,
		TemperatureCategory: TemperatureCategory(r.Temperature),
		Condition:           ConditionCategory(r.Main),
		Suggestions:         ClothingSuggestions(r.Temperature, r.Humidity, r.WindSpeed, r.Main),
		ComfortLevel:        ComfortLevel(r.Temperature, r.Humidity, r.WindSpeed),
	}
}

func TemperatureCategory(temp float64) string {
	switch {
	case temp < 10:
		return "cold"
	case temp < 18:
		return "cool"
	case temp < 26:
		return "comfortable"
	case temp < 32:
		return "warm"
	default:
		return "hot"
	}
}

var conditionCategories = map[string]string{
	"Clear":        "clear",
	"Clouds":       "cloudy",
	"Rain":         "rainy",
	"Snow":         "snowy",
	"Thunderstorm": "thunderstorm",
	"Drizzle":      "drizzle",
	"Mist":         "mist",
	"Fog":          "fog",
}

func ConditionCategory(main string) string {
	if c, ok := conditionCategories[main]; ok {
		return c
	}
	return "unknown"
}

func isWet(main string) bool {
	switch main {
	case "Rain", "Thunderstorm", "Drizzle":
		return true
	}
	return false
}

// ClothingSuggestions lists garment ideas per category. Every wearable
// category is present, possibly with an empty list.
func ClothingSuggestions(temp, humidity, windSpeed float64, main string) map[recommender.Category][]string {
	s := map[recommender.Category][]string{
		recommender.CategoryTop:       {},
		recommender.CategoryBottom:    {},
		recommender.CategoryOuterwear: {},
		recommender.CategoryShoes:     {},
		recommender.CategoryAccessory: {},
	}
	add := func(c recommender.Category, items ...string) {
		s[c] = append(s[c], items...)
	}

	switch {
	case temp < 10:
		add(recommender.CategoryTop, "thick sweater", "thermal underwear", "long-sleeve shirt")
		add(recommender.CategoryBottom, "thick trousers", "thermal leggings", "jeans")
		add(recommender.CategoryOuterwear, "down jacket", "heavy coat", "windproof jacket")
		add(recommender.CategoryAccessory, "scarf", "gloves", "beanie")
	case temp < 18:
		add(recommender.CategoryTop, "light sweater", "long-sleeve top", "shirt")
		add(recommender.CategoryBottom, "trousers", "jeans")
		add(recommender.CategoryOuterwear, "light jacket", "cardigan")
	case temp < 26:
		add(recommender.CategoryTop, "long-sleeve top", "light shirt", "t-shirt")
		add(recommender.CategoryBottom, "trousers", "cropped trousers", "light trousers")
	default:
		add(recommender.CategoryTop, "short-sleeve top", "t-shirt", "tank top")
		add(recommender.CategoryBottom, "shorts", "short skirt", "light trousers")
	}

	if isWet(main) {
		add(recommender.CategoryOuterwear, "raincoat")
		add(recommender.CategoryShoes, "rain boots", "waterproof shoes")
		add(recommender.CategoryAccessory, "umbrella")
	}
	if windSpeed > 5 {
		add(recommender.CategoryOuterwear, "windproof jacket")
	}
	if humidity > 80 {
		add(recommender.CategoryTop, "breathable fabric")
	}
	return s
}

// ComfortLevel grades the combination of temperature, humidity and wind.
func ComfortLevel(temp, humidity, windSpeed float64) string {
	score := 0
	switch {
	case temp >= 18 && temp <= 26:
		score += 40
	case temp >= 15 && temp <= 30:
		score += 30
	default:
		score += 10
	}
	switch {
	case humidity >= 40 && humidity <= 60:
		score += 30
	case humidity >= 30 && humidity <= 70:
		score += 20
	default:
		score += 10
	}
	switch {
	case windSpeed <= 3:
		score += 30
	case windSpeed <= 7:
		score += 20
	default:
		score += 10
	}

	switch {
	case score >= 80:
		return "very comfortable"
	case score >= 60:
		return "comfortable"
	case score >= 40:
		return "fair"
	default:
		return "uncomfortable"
	}
}
