package thumbnail

import "sync"

// Cache remembers video id to thumbnail URL for the life of the process. Entries
// never expire; Clear is the only invalidation.
type Cache struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewCache() *Cache {
	return &Cache{items: make(map[string]string)}
}

func (c *Cache) Get(videoID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.items[videoID]
	return url, ok
}

func (c *Cache) Put(videoID, url string) {
	c.mu.Lock()
	c.items[videoID] = url
	c.mu.Unlock()
}

// Clear drops every entry and returns how many there were.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.items)
	c.items = make(map[string]string)
	return n
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
