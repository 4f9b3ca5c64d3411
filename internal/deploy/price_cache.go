package deploy

import (
	"context"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/iamcos/haaslab/internal/metrics"
)

// PriceSource looks up the current price for a market tag.
type PriceSource interface {
	GetPrice(ctx context.Context, marketTag string) (float64, error)
}

// PriceCache memoizes market price lookups for a short TTL so deploying
// several bots on the same market costs one platform call.
type PriceCache struct {
	source    PriceSource
	cache     *cache.Cache
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewPriceCache creates a price cache in front of source.
func NewPriceCache(source PriceSource, ttl time.Duration) *PriceCache {
	return &PriceCache{
		source: source,
		cache:  cache.New(ttl, ttl*2),
	}
}

// Get returns the cached price for a market or fetches it through the
// source on a miss.
func (pc *PriceCache) Get(ctx context.Context, marketTag string) (float64, error) {
	if v, found := pc.cache.Get(marketTag); found {
		if price, ok := v.(float64); ok {
			pc.recordHit(true)
			return price, nil
		}
	}
	pc.recordHit(false)

	price, err := pc.source.GetPrice(ctx, marketTag)
	if err != nil {
		return 0, err
	}

	pc.cache.Set(marketTag, price, cache.DefaultExpiration)
	return price, nil
}

func (pc *PriceCache) recordHit(hit bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if hit {
		pc.hitCount++
	} else {
		pc.missCount++
	}
	total := pc.hitCount + pc.missCount
	if total > 0 {
		metrics.PriceCacheHitRatio.Set(float64(pc.hitCount) / float64(total))
	}
}

// Stats returns hit and miss counts.
func (pc *PriceCache) Stats() (hits, misses uint64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.hitCount, pc.missCount
}
