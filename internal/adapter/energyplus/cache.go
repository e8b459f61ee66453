package energyplus

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/openfield-comfort/internal/domain"
	"github.com/couchcryptid/openfield-comfort/internal/observability"
	"golang.org/x/sync/singleflight"
)

// SurfaceSimulator produces a surface temperature series for a request.
type SurfaceSimulator interface {
	Simulate(ctx context.Context, req domain.SurfaceRequest) (domain.SurfaceTemperature, error)
}

// CachedSimulator wraps a SurfaceSimulator with an in-memory LRU cache keyed
// by weather file, ground physics and shading. Concurrent requests for the
// same key share one simulation.
type CachedSimulator struct {
	inner   SurfaceSimulator
	cache   *lruCache
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedSimulator creates a cache decorator around a simulator.
func NewCachedSimulator(inner SurfaceSimulator, maxEntries int, metrics *observability.Metrics) *CachedSimulator {
	return &CachedSimulator{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func cacheKey(req domain.SurfaceRequest) string {
	return fmt.Sprintf("%s|%s|%t", req.WeatherFile, req.Case.Ground.Key(), req.Case.Shaded)
}

// Simulate returns a cached result when the same physics was already simulated.
// Every caller receives its own copy of the series.
func (c *CachedSimulator) Simulate(ctx context.Context, req domain.SurfaceRequest) (domain.SurfaceTemperature, error) {
	key := cacheKey(req)
	if st, ok := c.cache.get(key); ok {
		c.metrics.SimulationCache.WithLabelValues("hit").Inc()
		return withGround(st, req), nil
	}
	c.metrics.SimulationCache.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		st, err := c.inner.Simulate(ctx, req)
		if err != nil {
			return nil, err
		}
		c.cache.put(key, st)
		return st, nil
	})
	if err != nil {
		return domain.SurfaceTemperature{}, err
	}
	return withGround(v.(domain.SurfaceTemperature), req), nil
}

// withGround copies the cached series and re-attaches the requested ground,
// whose label may differ from the one that populated the cache.
func withGround(st domain.SurfaceTemperature, req domain.SurfaceRequest) domain.SurfaceTemperature {
	st.Series = st.Series.Clone()
	st.Ground = req.Case.Ground
	return st
}

// lruCache bounds the number of cached surface temperatures, evicting the
// least recently simulated or read case first.
type lruCache struct {
	mu         sync.Mutex
	maxEntries int
	order      *list.List // front is most recent
	byKey      map[string]*list.Element
}

type cached struct {
	key string
	st  domain.SurfaceTemperature
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: max(maxEntries, 1),
		order:      list.New(),
		byKey:      make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (domain.SurfaceTemperature, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byKey[key]
	if !ok {
		return domain.SurfaceTemperature{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cached).st, true
}

func (c *lruCache) put(key string, st domain.SurfaceTemperature) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byKey[key]; ok {
		el.Value.(*cached).st = st
		c.order.MoveToFront(el)
		return
	}
	c.byKey[key] = c.order.PushFront(&cached{key: key, st: st})

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.byKey, oldest.Value.(*cached).key)
	}
}
