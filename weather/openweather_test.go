package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneCallBody = `{"current": {"temp": 27.6, "feels_like": 30.2, "humidity": 65, "pressure": 1009,
	"wind_speed": 1.03, "wind_deg": 180, "clouds": 40, "dt": 1700000000,
	"weather": [{"main": "Clouds", "description": "scattered clouds", "icon": "03d"}]}}`

func testProvider(baseURL string) *OpenWeatherProvider {
	return NewOpenWeatherProvider(Options{
		APIKey:  "key",
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: time.Second},
		Backoff: BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
		Logger:  zerolog.Nop(),
	})
}

func TestOpenWeatherProviderCurrent(t *testing.T) {
	var geoQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		switch r.URL.Path {
		case "/geo/1.0/direct":
			geoQuery = r.URL.Query().Get("q")
			_, _ = w.Write([]byte(`[{"name": "Taipei", "lat": 25.03, "lon": 121.56}]`))
		case "/data/3.0/onecall":
			assert.Equal(t, "metric", r.URL.Query().Get("units"))
			assert.Equal(t, "25.030000", r.URL.Query().Get("lat"))
			_, _ = w.Write([]byte(oneCallBody))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	report, err := testProvider(srv.URL).Current(context.Background(), "台北")
	require.NoError(t, err)

	assert.Equal(t, "Taipei,TW", geoQuery)
	assert.Equal(t, "台北", report.City)
	assert.Equal(t, 28.0, report.Temperature)
	assert.Equal(t, 30.0, report.FeelsLike)
	assert.Equal(t, "Clouds", report.Main)
	assert.Equal(t, "03d", report.Icon)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), report.ObservedAt)

	w := report.Context()
	assert.Equal(t, 28.0, w.TemperatureC)
	assert.Equal(t, "Clouds", w.Main)
}

func TestOpenWeatherProviderCityNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := testProvider(srv.URL).Current(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestOpenWeatherProviderRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/geo/1.0/direct" {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`[{"lat": 1, "lon": 2}]`))
			return
		}
		_, _ = w.Write([]byte(oneCallBody))
	}))
	defer srv.Close()

	report, err := testProvider(srv.URL).Current(context.Background(), "Kaohsiung")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "Kaohsiung", report.City)
}

func TestOpenWeatherProviderGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testProvider(srv.URL).Current(context.Background(), "Taipei")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errServerError))
}

func TestOpenWeatherProviderRequiresKey(t *testing.T) {
	p := NewOpenWeatherProvider(Options{Logger: zerolog.Nop()})
	_, err := p.Current(context.Background(), "Taipei")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolveCity(t *testing.T) {
	assert.Equal(t, "Taichung,TW", ResolveCity("台中"))
	assert.Equal(t, "taipei,TW", ResolveCity("taipei"))
	assert.Equal(t, "Tokyo", ResolveCity(" Tokyo "))
	assert.Equal(t, CacheKey("Taipei"), CacheKey("台北"))
}

func TestOpenWeatherProviderDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testProvider(srv.URL).Current(context.Background(), "Taipei")
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnexpected)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenWeatherProviderRetriesRateLimits(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/geo/1.0/direct" {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_, _ = w.Write([]byte(`[{"lat": 1, "lon": 2}]`))
			return
		}
		_, _ = w.Write([]byte(oneCallBody))
	}))
	defer srv.Close()

	_, err := testProvider(srv.URL).Current(context.Background(), "Tainan")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter(" 3 "))
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
