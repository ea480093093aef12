package cache

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// simple cache implemented using ristretto cache library
type InMemoryCache struct {
	cache *ristretto.Cache
}

var (
	inMemoryCache *InMemoryCache
	initOnce      sync.Once
)

// NewInMemoryCache creates a cache. A nil config gives a small cache suited to
// PATH lookups and tool versions.
func NewInMemoryCache(config *ristretto.Config) (*InMemoryCache, error) {
	if config == nil {
		config = &ristretto.Config{
			NumCounters: 10000,   // number of keys to track frequency
			MaxCost:     1 << 20, // maximum cost of cache (items are cost 1)
			BufferItems: 64,      // number of keys per Get buffer.
		}
	}
	c, err := ristretto.NewCache(config)
	if err != nil {
		return nil, err
	}
	return &InMemoryCache{c}, nil
}

// GetCache returns the process wide cache, creating it on first use.
func GetCache() *InMemoryCache {
	initOnce.Do(func() {
		c, err := NewInMemoryCache(nil)
		if err != nil {
			// the default config is always valid
			panic(err)
		}
		inMemoryCache = c
	})
	return inMemoryCache
}

func (cache *InMemoryCache) SetWithTTL(key string, value interface{}, ttl time.Duration) bool {
	res := cache.cache.SetWithTTL(key, value, 1, ttl)

	// wait for value to pass through buffers
	cache.cache.Wait()
	return res
}

func (cache *InMemoryCache) Get(key string) (interface{}, bool) {
	return cache.cache.Get(key)
}

func (cache *InMemoryCache) Delete(key string) {
	cache.cache.Del(key)
}

func (cache *InMemoryCache) Clear() {
	cache.cache.Clear()
}
