package weather

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

type Refresher interface {
	Refresh(ctx context.Context, city string) error
}

// Warmer periodically refreshes cached weather for a fixed set of cities so
// recommendation requests rarely wait on the upstream API.
type Warmer struct {
	scheduler *gocron.Scheduler
	cache     Refresher
	cities    []string
	interval  time.Duration
	logger    zerolog.Logger
}

//nolint:gocritic // zerolog.Logger is passed by value
func NewWarmer(cache Refresher, cities []string, interval time.Duration, logger zerolog.Logger) *Warmer {
	return &Warmer{
		scheduler: gocron.NewScheduler(time.UTC),
		cache:     cache,
		cities:    cities,
		interval:  interval,
		logger:    logger.With().Str("component", "weather_warmer").Logger(),
	}
}

func (w *Warmer) Start() error {
	if len(w.cities) == 0 {
		w.logger.Info().Msg("no cities configured; nothing to warm")
		return nil
	}
	minutes := int(w.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}
	if _, err := w.scheduler.Every(minutes).Minutes().Do(w.WarmOnce); err != nil {
		return err
	}
	w.scheduler.StartAsync()
	return nil
}

// WarmOnce refreshes every city concurrently and returns the number of failures.
func (w *Warmer) WarmOnce() int {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)
	for _, city := range w.cities {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := w.cache.Refresh(ctx, city); err != nil {
				w.logger.Warn().Err(err).Str("city", city).Msg("weather refresh failed")
				mu.Lock()
				failures++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	w.logger.Debug().Int("cities", len(w.cities)).Int("failures", failures).Msg("weather cache warmed")
	return failures
}

func (w *Warmer) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}
}
