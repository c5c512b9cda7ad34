package demo

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a bounded LRU map.
type Cache[K comparable, V any] struct {
	store *lru.Cache[K, V]
}

// NewCache creates a Cache holding at most size entries.
func NewCache[K comparable, V any](size int) (*Cache[K, V], error) {
	store, err := lru.New[K, V](size)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{store: store}, nil
}

//interlog:observe severity=Trace
func (c *Cache[K, V]) Get(key K) (V, bool) {
	return c.store.Get(key)
}

//interlog:observe
func (c *Cache[K, V]) Put(key K, value V) {
	c.store.Add(key, value)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return c.store.Len()
}
