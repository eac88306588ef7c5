package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wardrobeapi/metrics"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

const DefaultBaseURL = "https://api.openweathermap.org"

type Options struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	Backoff BackoffConfig
	Logger  zerolog.Logger
}

// OpenWeatherProvider geocodes the city and then reads One Call 3.0 current conditions.
type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

//nolint:gocritic // Options is built once at startup
func NewOpenWeatherProvider(opts Options) *OpenWeatherProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Backoff.InitialInterval == 0 {
		opts.Backoff.InitialInterval = 500 * time.Millisecond
		opts.Backoff.MaxInterval = 5 * time.Second
	}
	return &OpenWeatherProvider{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		httpCfg: HTTPClientConfig{Client: opts.Client, Backoff: opts.Backoff},
		circuit: newBreaker("openweather"),
		logger:  opts.Logger.With().Str("component", "weather").Logger(),
	}
}

type geoResult struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type oneCallResponse struct {
	Current struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
		WindSpeed float64 `json:"wind_speed"`
		WindDeg   float64 `json:"wind_deg"`
		Clouds    float64 `json:"clouds"`
		Sunrise   int64   `json:"sunrise"`
		Sunset    int64   `json:"sunset"`
		Dt        int64   `json:"dt"`
		Weather   []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	} `json:"current"`
}

func (p *OpenWeatherProvider) getJSON(ctx context.Context, endpoint string, values url.Values, out interface{}) error {
	values.Set("appid", p.apiKey)
	build := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s%s?%s", p.baseURL, endpoint, values.Encode()), nil)
	}
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, build)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func (p *OpenWeatherProvider) coordinates(ctx context.Context, city string) (geoResult, error) {
	values := url.Values{}
	values.Set("q", ResolveCity(city))
	values.Set("limit", "1")
	var results []geoResult
	if err := p.getJSON(ctx, "/geo/1.0/direct", values, &results); err != nil {
		return geoResult{}, fmt.Errorf("geocode %q: %w", city, err)
	}
	if len(results) == 0 {
		return geoResult{}, fmt.Errorf("%w: %s", ErrCityNotFound, city)
	}
	return results[0], nil
}

func (p *OpenWeatherProvider) Current(ctx context.Context, city string) (*Report, error) {
	if p.apiKey == "" {
		return nil, ErrNotConfigured
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrEmptyCity
	}

	started := time.Now()
	defer func() {
		metrics.WeatherLookupDuration.Observe(time.Since(started).Seconds())
	}()

	geo, err := p.coordinates(ctx, city)
	if err != nil {
		metrics.WeatherLookupsTotal.WithLabelValues("api", "error").Inc()
		return nil, err
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", geo.Lat))
	values.Set("lon", fmt.Sprintf("%f", geo.Lon))
	values.Set("units", "metric")
	values.Set("exclude", "minutely,alerts")
	var payload oneCallResponse
	if err := p.getJSON(ctx, "/data/3.0/onecall", values, &payload); err != nil {
		metrics.WeatherLookupsTotal.WithLabelValues("api", "error").Inc()
		return nil, fmt.Errorf("one call for %q: %w", city, err)
	}
	metrics.WeatherLookupsTotal.WithLabelValues("api", "ok").Inc()
	p.logger.Debug().Str("city", city).Float64("lat", geo.Lat).Float64("lon", geo.Lon).Msg("weather fetched")
	return buildReport(city, payload), nil
}

func buildReport(city string, payload oneCallResponse) *Report {
	cur := payload.Current
	r := &Report{
		City:        city,
		Temperature: math.Round(cur.Temp),
		FeelsLike:   math.Round(cur.FeelsLike),
		Humidity:    cur.Humidity,
		Pressure:    cur.Pressure,
		WindSpeed:   cur.WindSpeed,
		WindDeg:     cur.WindDeg,
		Cloudiness:  cur.Clouds,
		Main:        "Clear",
		Description: "clear sky",
		Icon:        "01d",
		Sunrise:     cur.Sunrise,
		Sunset:      cur.Sunset,
		ObservedAt:  time.Now().UTC(),
	}
	if r.Pressure == 0 {
		r.Pressure = 1013
	}
	if cur.Dt > 0 {
		r.ObservedAt = time.Unix(cur.Dt, 0).UTC()
	}
	if len(cur.Weather) > 0 {
		w := cur.Weather[0]
		if w.Main != "" {
			r.Main = w.Main
		}
		if w.Description != "" {
			r.Description = w.Description
		}
		if w.Icon != "" {
			r.Icon = w.Icon
		}
	}
	return r
}
