package ai

import "sync"

// CacheKey identifies a cached first question.
type CacheKey struct {
	EntityID int
	Topic    string
}

// QuestionCache holds first-question exchanges per (entity, topic).
// It is owned by a Client and cleared only on request.
type QuestionCache struct {
	mu      sync.Mutex
	entries map[CacheKey]Exchange
}

// NewQuestionCache returns an empty cache.
func NewQuestionCache() *QuestionCache {
	return &QuestionCache{entries: map[CacheKey]Exchange{}}
}

// Get returns the cached exchange for key.
func (c *QuestionCache) Get(key CacheKey) (Exchange, bool) {
	if c == nil {
		return Exchange{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ex, ok := c.entries[key]
	return ex, ok
}

// Put stores ex under key.
func (c *QuestionCache) Put(key CacheKey, ex Exchange) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ex
}

// Delete drops the entry for key.
func (c *QuestionCache) Delete(key CacheKey) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of cached entries.
func (c *QuestionCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *QuestionCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[CacheKey]Exchange{}
}
