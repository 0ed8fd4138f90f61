package workbook

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"credit-service/internal/domain"
)

// Fingerprint is the cache key of an uploaded file: the SHA-256 of its bytes.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Cache memoizes parsed workbooks by content fingerprint, one entry per
// distinct upload. When full, the oldest entry is dropped; with the default
// capacity of one, every new upload invalidates the previous one.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]*domain.Workbook
	order      []string
}

// NewCache creates a cache holding up to maxEntries workbooks. Zero disables it.
func NewCache(maxEntries int) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		entries:    make(map[string]*domain.Workbook),
	}
}

// Get returns the workbook stored under key.
func (c *Cache) Get(key string) (*domain.Workbook, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	wb, ok := c.entries[key]
	return wb, ok
}

// Put stores wb under key, evicting the oldest entries beyond capacity.
func (c *Cache) Put(key string, wb *domain.Workbook) {
	if c.maxEntries <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = wb

	for len(c.order) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Invalidate drops one entry.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*domain.Workbook)
	c.order = nil
}

// Len reports how many workbooks are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
