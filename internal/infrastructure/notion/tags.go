package notion

import (
	"sync"
	"time"
)

// tagCacheTTL bounds how stale the cached tag vocabulary may get before
// the next write refetches it from the store.
const tagCacheTTL = 5 * time.Minute

// TagCache holds the tag vocabulary as a single value with an expiry.
// One writer process, one database: a single slot is all the cache
// the pipeline needs.
type TagCache struct {
	mu     sync.Mutex
	values map[string]struct{}
	expiry time.Time

	now func() time.Time // injected in tests
}

// NewTagCache returns an empty cache using wall-clock time.
func NewTagCache() *TagCache {
	return &TagCache{now: time.Now}
}

// Get returns the cached vocabulary and whether it is still fresh.
func (c *TagCache) Get() (map[string]struct{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values == nil || !c.now().Before(c.expiry) {
		return nil, false
	}
	return c.values, true
}

// Set stores a freshly fetched vocabulary with a new TTL window.
func (c *TagCache) Set(values map[string]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = values
	c.expiry = c.now().Add(tagCacheTTL)
}

// Clear drops the cached vocabulary, forcing the next Get to miss.
func (c *TagCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = nil
	c.expiry = time.Time{}
}

// FilterTags keeps only tags present in the vocabulary, preserving the
// suggested order. Unknown tags are silently dropped.
func FilterTags(suggested []string, valid map[string]struct{}) []string {
	kept := make([]string, 0, len(suggested))
	for _, tag := range suggested {
		if _, ok := valid[tag]; ok {
			kept = append(kept, tag)
		}
	}
	return kept
}
