package quote

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
)

// CachedProvider wraps another Provider with a short-TTL ristretto
// cache. Within one TTL window two lookups of the same symbol return
// the identical snapshot, which keeps a portfolio page from hammering
// the upstream API once per position.
//
// Not-found results are never cached: a newly listed symbol becomes
// visible on the next lookup.
type CachedProvider struct {
	next Provider
	c    *ristretto.Cache
	ttl  time.Duration
}

// Cached wraps next with a TTL cache.
func Cached(next Provider, ttl time.Duration) (*CachedProvider, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedProvider{next: next, c: c, ttl: ttl}, nil
}

func (p *CachedProvider) Lookup(ctx context.Context, symbol string) (Quote, error) {
	key := Normalize(symbol)

	if v, ok := p.c.Get(key); ok {
		if q, ok := v.(Quote); ok {
			return q, nil
		}
	}

	q, err := p.next.Lookup(ctx, key)
	if err != nil {
		return Quote{}, err
	}

	p.c.SetWithTTL(key, q, 1, p.ttl)
	return q, nil
}

// Close releases the cache's internal goroutines.
func (p *CachedProvider) Close() { p.c.Close() }
