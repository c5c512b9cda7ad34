package rules

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/interlog/pkg/value"
)

// DefaultCacheSize is the number of method keys kept by CachedReader.
const DefaultCacheSize = 512

// CachedReader memoizes the parsed rules of another Reader per method key.
// Call Purge after the underlying source changes.
type CachedReader struct {
	inner Reader
	cache *lru.Cache[string, []value.Value]
}

// NewCachedReader wraps inner with an LRU cache of cacheSize entries.
func NewCachedReader(inner Reader, cacheSize int) *CachedReader {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, _ := lru.New[string, []value.Value](cacheSize)
	return &CachedReader{
		inner: inner,
		cache: cache,
	}
}

// Read implements Reader. The returned slice is shared and must not be
// modified.
func (c *CachedReader) Read(method string) []value.Value {
	if rules, ok := c.cache.Get(method); ok {
		return rules
	}
	rules := c.inner.Read(method)
	c.cache.Add(method, rules)
	return rules
}

// Purge drops every cached entry.
func (c *CachedReader) Purge() {
	c.cache.Purge()
}

// Len returns the number of cached method keys.
func (c *CachedReader) Len() int {
	return c.cache.Len()
}
