package pricing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"solana-airdrop-client/internal/observability"
)

// DefaultTTL is how long a quote (including a missing one) stays fresh.
const DefaultTTL = 5 * time.Minute

// cacheEntry holds a quote and when it was taken. A nil price is a valid
// entry: "no quote" is cached like any other answer.
type cacheEntry struct {
	price     *float64
	fetchedAt time.Time
}

// Cache wraps a Source with a TTL cache and in-flight deduplication, so a
// page of airdrops sharing a mint costs one upstream call per TTL window.
type Cache struct {
	source Source
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// CacheOption configures Cache.
type CacheOption func(*Cache)

// WithTTL sets the freshness window.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a price cache over the given source.
func NewCache(source Source, logger *zap.Logger, opts ...CacheOption) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		source:  source,
		ttl:     DefaultTTL,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Source = (*Cache)(nil)

// GetPriceUSD returns the cached quote when fresh, otherwise fetches once and
// shares the result with concurrent callers. Fetch failures are cached as
// "no quote" so a flapping upstream does not get hammered.
func (c *Cache) GetPriceUSD(ctx context.Context, mint string) (*float64, error) {
	c.mu.RLock()
	entry, ok := c.entries[mint]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		observability.RecordPriceCache(true)
		return entry.price, nil
	}
	observability.RecordPriceCache(false)

	v, err, _ := c.group.Do(mint, func() (interface{}, error) {
		// Another waiter may have refreshed the entry while we queued.
		c.mu.RLock()
		entry, ok := c.entries[mint]
		c.mu.RUnlock()
		if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
			return entry.price, nil
		}

		price, err := c.source.GetPriceUSD(ctx, mint)
		if err != nil {
			c.logger.Warn("price fetch failed",
				zap.String("mint", mint),
				zap.Error(err))
			price = nil
		}

		c.mu.Lock()
		c.entries[mint] = cacheEntry{price: price, fetchedAt: c.now()}
		c.mu.Unlock()

		return price, nil
	})
	if err != nil {
		return nil, err
	}
	price, _ := v.(*float64)
	return price, nil
}
