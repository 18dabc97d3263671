package extract

import (
	"sync"

	"github.com/piwi3910/platenest/internal/model"
)

// Cache stores extracted geometry by source id. Entries are copied on the
// way in and out so callers can mutate what they get back.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*model.PlateGeometry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*model.PlateGeometry)}
}

// Get returns a copy of the cached geometry for id.
func (c *Cache) Get(id string) (*model.PlateGeometry, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	pg, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return pg.Clone(), true
}

// Put stores a copy of pg under its SourceID.
func (c *Cache) Put(pg *model.PlateGeometry) {
	if c == nil || pg == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pg.SourceID] = pg.Clone()
}

// Invalidate drops the entry for id.
func (c *Cache) Invalidate(id string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*model.PlateGeometry)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
