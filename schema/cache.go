package schema

import (
	"sync"
)

// Key joins schema coordinates into the cache key. Two distinct coordinate
// tuples must never produce the same key; the segments are joined verbatim
// so the uniqueness of the tuple carries over to the string.
func Key(domain, version, category, name string) string {
	return domain + "/" + version + "/" + category + "/" + name
}

// Cache is a concurrency-safe document cache scoped to one Resolver. It is
// populated lazily by resolution and in bulk by the archive loader, and can
// be cleared at any time, including while loads are in flight.
type Cache struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		docs: make(map[string]*Document),
	}
}

// Get returns the cached document for a key, if present.
func (c *Cache) Get(key string) (*Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[key]
	return doc, ok
}

// Put stores a document under a key, replacing any previous entry.
func (c *Cache) Put(key string, doc *Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs[key] = doc
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.docs)
}

// Clear removes all cached documents.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs = make(map[string]*Document)
}
