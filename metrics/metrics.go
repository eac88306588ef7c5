// Package metrics exposes Prometheus collectors for recommendations, weather
// lookups and background tasks.
package metrics

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecommendationsTotal counts recommendation requests by outcome reason.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_recommendations_total",
			Help: "Total number of recommendation requests by reason",
		},
		[]string{"reason"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wardrobe_recommendation_duration_seconds",
			Help:    "Time spent running the recommendation engine",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	MalformedAttributesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wardrobe_malformed_attributes_total",
			Help: "Stored tag fields that had to be recovered by delimiter splitting",
		},
	)

	// WeatherLookupsTotal counts provider lookups by source (cache, api) and result.
	WeatherLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_weather_lookups_total",
			Help: "Weather lookups by source and result",
		},
		[]string{"source", "result"},
	)

	WeatherLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wardrobe_weather_lookup_duration_seconds",
			Help:    "Latency of upstream weather API calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	TasksProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_tasks_processed_total",
			Help: "Background tasks processed by type and status",
		},
		[]string{"task", "status"},
	)
)

func ObserveRecommendation(reason string, started time.Time) {
	RecommendationsTotal.WithLabelValues(reason).Inc()
	RecommendationDuration.Observe(time.Since(started).Seconds())
}

func ObserveTask(task string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	TasksProcessedTotal.WithLabelValues(task, status).Inc()
}

// Handler serves the Prometheus exposition format.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
