package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type memoryCache struct{ c *gocache.Cache }

// NewMemory returns an in-process cache. defaultTTL applies when Set is
// called with ttl <= 0.
func NewMemory(defaultTTL time.Duration) Cache {
	if defaultTTL <= 0 {
		defaultTTL = 2 * time.Minute
	}
	return &memoryCache{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *memoryCache) Get(k string) ([]byte, bool) {
	v, ok := m.c.Get(k)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	return b, true
}

func (m *memoryCache) Set(k string, v []byte, ttl time.Duration) {
	if ttl <= 0 {
		m.c.SetDefault(k, v)
		return
	}
	m.c.Set(k, v, ttl)
}

func (m *memoryCache) Delete(k string) { m.c.Delete(k) }
