package weather

import (
	"context"
	"fmt"
	"time"

	"wardrobeapi/metrics"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
)

// CachedProvider keeps reports in an in-process ristretto cache for ttl.
type CachedProvider struct {
	cache *cache.LoadableCache[*Report]
}

func NewCachedProvider(upstream Provider, ttl time.Duration) (*CachedProvider, error) {
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}

	loadFunction := func(ctx context.Context, key any) (*Report, []store.Option, error) {
		req, ok := key.(cacheRequest)
		if !ok {
			return nil, nil, fmt.Errorf("invalid key type provided to weather cache: %T", key)
		}
		metrics.WeatherLookupsTotal.WithLabelValues("cache", "miss").Inc()
		report, err := upstream.Current(ctx, req.city)
		return report, []store.Option{store.WithExpiration(ttl), store.WithCost(1)}, err
	}

	return &CachedProvider{
		cache: cache.NewLoadable[*Report](loadFunction, cache.New[*Report](ristretto_store.NewRistretto(ristrettoCache))),
	}, nil
}

// cacheRequest carries the original spelling to the loader while the cache
// itself keys on the folded name.
type cacheRequest struct {
	city string
	key  string
}

func (r cacheRequest) GetCacheKey() string {
	return r.key
}

func (p *CachedProvider) Current(ctx context.Context, city string) (*Report, error) {
	key := CacheKey(city)
	if key == "" {
		return nil, ErrEmptyCity
	}
	report, err := p.cache.Get(ctx, cacheRequest{city: city, key: key})
	if err != nil {
		return nil, err
	}
	// copy so callers cannot mutate the cached value
	out := *report
	return &out, nil
}

// Refresh drops the cached entry and loads a fresh one.
func (p *CachedProvider) Refresh(ctx context.Context, city string) error {
	key := CacheKey(city)
	_ = p.cache.Delete(ctx, cacheRequest{city: city, key: key})
	_, err := p.Current(ctx, city)
	return err
}
