package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// LRU a LRU cache extends golang-lru, with hit/miss collecting.
type LRU struct {
	cache     *lru.Cache
	hit, miss atomic.Int64
	flag      atomic.Int32
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU(maxSize int) (*LRU, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: cache}, nil
}

// Get looks up a key's value.
func (l *LRU) Get(key interface{}) (interface{}, bool) {
	v, ok := l.cache.Get(key)
	if ok {
		l.hit.Add(1)
	} else {
		l.miss.Add(1)
	}
	return v, ok
}

// Add adds a value to the cache.
func (l *LRU) Add(key, value interface{}) {
	l.cache.Add(key, value)
}

// Remove removes the provided key from the cache.
func (l *LRU) Remove(key interface{}) {
	l.cache.Remove(key)
}

// Purge clears the cache completely.
func (l *LRU) Purge() {
	l.cache.Purge()
}

// Len returns the number of cached entries.
func (l *LRU) Len() int {
	return l.cache.Len()
}

// Loader defines loader to load value.
type Loader func(key interface{}) (interface{}, error)

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU) GetOrLoad(key interface{}, loader Loader) (interface{}, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := loader(key)
	if err != nil {
		return nil, err
	}

	l.Add(key, v)
	return v, nil
}

// Stats returns the number of hits and misses and whether
// the hit rate was changed comparing to the last call.
func (l *LRU) Stats() (bool, int64, int64) {
	hit := l.hit.Load()
	miss := l.miss.Load()
	lookups := hit + miss

	hitRate := float64(0)
	if lookups > 0 {
		hitRate = float64(hit) / float64(lookups)
	}
	flag := int32(hitRate * 1000)

	return l.flag.Swap(flag) != flag, hit, miss
}
