package token

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"solana-airdrop-client/internal/domain"
	"solana-airdrop-client/internal/observability"
)

// Cache memoizes resolved token metadata for the life of the process.
// Decimals and names do not change, so entries never expire; failed
// resolutions are not stored and will be retried on the next request.
type Cache struct {
	resolver *Resolver

	mu      sync.RWMutex
	entries map[string]*domain.TokenMetadata
	group   singleflight.Group
}

// NewCache creates a metadata cache over the resolver.
func NewCache(resolver *Resolver) *Cache {
	return &Cache{
		resolver: resolver,
		entries:  make(map[string]*domain.TokenMetadata),
	}
}

// Get returns the metadata for a mint, resolving it at most once even under
// concurrent callers.
func (c *Cache) Get(ctx context.Context, mint string) (*domain.TokenMetadata, error) {
	c.mu.RLock()
	meta, ok := c.entries[mint]
	c.mu.RUnlock()
	if ok {
		observability.RecordTokenCache(true)
		return meta, nil
	}
	observability.RecordTokenCache(false)

	v, err, _ := c.group.Do(mint, func() (interface{}, error) {
		c.mu.RLock()
		meta, ok := c.entries[mint]
		c.mu.RUnlock()
		if ok {
			return meta, nil
		}

		meta, err := c.resolver.Resolve(ctx, mint)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[mint] = meta
		c.mu.Unlock()
		return meta, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.TokenMetadata), nil
}

// GetMany resolves a batch of mints concurrently, deduplicating the input.
// Mints that fail to resolve are skipped; the caller renders what it can.
func (c *Cache) GetMany(ctx context.Context, mints []string) map[string]*domain.TokenMetadata {
	seen := make(map[string]struct{}, len(mints))
	unique := make([]string, 0, len(mints))
	for _, mint := range mints {
		if _, ok := seen[mint]; ok {
			continue
		}
		seen[mint] = struct{}{}
		unique = append(unique, mint)
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]*domain.TokenMetadata, len(unique))
	)
	for _, mint := range unique {
		wg.Add(1)
		go func(mint string) {
			defer wg.Done()
			meta, err := c.Get(ctx, mint)
			if err != nil {
				return
			}
			mu.Lock()
			out[mint] = meta
			mu.Unlock()
		}(mint)
	}
	wg.Wait()
	return out
}
