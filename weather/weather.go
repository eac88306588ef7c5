// Package weather looks up current conditions for a city and derives the
// outfit-relevant context the recommender consumes.
package weather

import (
	"context"
	"errors"
	"strings"
	"time"

	"wardrobeapi/languageutil"
	"wardrobeapi/recommender"
)

var (
	ErrNotConfigured = errors.New("weather api key is not configured")
	ErrCityNotFound  = errors.New("city not found")
	ErrEmptyCity     = errors.New("city is required")
)

type Provider interface {
	Current(ctx context.Context, city string) (*Report, error)
}

// Report is a normalized snapshot of current conditions. Temperatures are
// whole degrees Celsius.
type Report struct {
	City        string    `json:"city_name"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	WindSpeed   float64   `json:"wind_speed"`
	WindDeg     float64   `json:"wind_deg"`
	Cloudiness  float64   `json:"cloudiness"`
	Main        string    `json:"weather_main"`
	Description string    `json:"weather_description"`
	Icon        string    `json:"weather_icon"`
	Sunrise     int64     `json:"sunrise"`
	Sunset      int64     `json:"sunset"`
	ObservedAt  time.Time `json:"timestamp"`
}

// Context is the subset of the report the engine scores against.
func (r *Report) Context() recommender.Weather {
	return recommender.Weather{
		TemperatureC: r.Temperature,
		Main:         r.Main,
		Description:  r.Description,
		Humidity:     r.Humidity,
		WindSpeed:    r.WindSpeed,
	}
}

// taiwanCities maps local city names to the names the geocoder knows.
var taiwanCities = map[string]string{
	"台北": "Taipei", "台北市": "Taipei", "臺北": "Taipei", "臺北市": "Taipei",
	"新北": "New Taipei", "新北市": "New Taipei",
	"桃園": "Taoyuan", "台中": "Taichung", "台中市": "Taichung", "臺中": "Taichung",
	"台南": "Tainan", "台南市": "Tainan", "臺南": "Tainan",
	"高雄": "Kaohsiung", "高雄市": "Kaohsiung", "基隆": "Keelung",
	"新竹": "Hsinchu", "嘉義": "Chiayi", "宜蘭": "Yilan", "花蓮": "Hualien", "台東": "Taitung",
}

var taiwanEnglish = func() map[string]struct{} {
	m := make(map[string]struct{}, len(taiwanCities))
	for _, en := range taiwanCities {
		m[strings.ToLower(en)] = struct{}{}
	}
	return m
}()

// ResolveCity returns the geocoder query for a user supplied city name. Known
// Taiwanese cities are pinned to country TW.
func ResolveCity(city string) string {
	city = strings.TrimSpace(city)
	if en, ok := taiwanCities[city]; ok {
		return en + ",TW"
	}
	if _, ok := taiwanEnglish[strings.ToLower(city)]; ok {
		return city + ",TW"
	}
	return city
}

// CacheKey folds a city name so "Taipei", " taipei " and "台北" share an entry.
func CacheKey(city string) string {
	return languageutil.Fold(ResolveCity(city))
}
