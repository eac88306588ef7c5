package weather

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type recordingRefresher struct {
	mu     sync.Mutex
	cities []string
}

func (r *recordingRefresher) Refresh(_ context.Context, city string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cities = append(r.cities, city)
	if city == "Nowhere" {
		return errors.New("city not found")
	}
	return nil
}

func TestWarmOnceRefreshesEveryCity(t *testing.T) {
	r := &recordingRefresher{}
	w := NewWarmer(r, []string{"Taipei", "Tainan", "Nowhere"}, 0, zerolog.Nop())

	failures := w.WarmOnce()

	assert.Equal(t, 1, failures)
	assert.ElementsMatch(t, []string{"Taipei", "Tainan", "Nowhere"}, r.cities)
}

func TestWarmerStartWithoutCities(t *testing.T) {
	w := NewWarmer(&recordingRefresher{}, nil, 0, zerolog.Nop())
	assert.NoError(t, w.Start())
	w.Stop()
}
