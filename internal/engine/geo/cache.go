package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rendis/rentscout/internal/model"
)

// DefaultCacheTTL is how long a resolved address stays valid.
const DefaultCacheTTL = time.Hour

// CacheStore persists resolved coordinates with an expiry.
type CacheStore interface {
	Get(ctx context.Context, key string) (model.Coordinate, bool, error)
	Set(ctx context.Context, key string, c model.Coordinate, ttl time.Duration) error
}

// Cache wraps a Geocoder with a TTL cache keyed by normalized address.
// Only successful lookups are cached.
type Cache struct {
	inner      Geocoder
	store      CacheStore
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

var _ Geocoder = (*Cache)(nil)

// NewCache creates a caching decorator. cacheTotal is a counter vec with a
// "result" label ("hit"/"miss"); it may be nil.
func NewCache(inner Geocoder, store CacheStore, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		inner:      inner,
		store:      store,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// GetOrFetch returns the cached coordinate for address, resolving and
// caching it on a miss. Every failure is reported as ErrNotFound.
func (c *Cache) GetOrFetch(ctx context.Context, address string) (model.Coordinate, error) {
	key := CacheKey(address)

	coord, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("geocode cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		c.inc("hit")
		return coord, nil
	}
	c.inc("miss")

	coord, err = c.inner.Resolve(ctx, address)
	if err != nil {
		c.logger.Info("geocode failed", zap.String("address", address), zap.Error(err))
		if errors.Is(err, ErrNotFound) {
			return model.Coordinate{}, err
		}
		return model.Coordinate{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	if err := c.store.Set(ctx, key, coord, c.ttl); err != nil {
		c.logger.Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
	}
	return coord, nil
}

// Resolve implements Geocoder.
func (c *Cache) Resolve(ctx context.Context, address string) (model.Coordinate, error) {
	return c.GetOrFetch(ctx, address)
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// CacheKey normalizes an address: lower case, single spaces.
func CacheKey(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

type memoryEntry struct {
	coord     model.Coordinate
	expiresAt time.Time
}

// MemoryStore is an in-process CacheStore. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (model.Coordinate, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return model.Coordinate{}, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return model.Coordinate{}, false, nil
	}
	return e.coord, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, c model.Coordinate, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{coord: c, expiresAt: m.now().Add(ttl)}
	return nil
}

// Len returns the number of entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
