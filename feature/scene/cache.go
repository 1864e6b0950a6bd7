package scene

import (
	"sync"

	"colabdraw/core/scene"
)

// VersionCache remembers, per connection, the fingerprint of the last scene
// that was persisted or loaded through it. It is advisory: a miss only costs
// a redundant save.
type VersionCache struct {
	mu       sync.RWMutex
	versions map[string]int64
}

// NewVersionCache creates an empty cache.
func NewVersionCache() *VersionCache {
	return &VersionCache{versions: make(map[string]int64)}
}

// Get returns the cached fingerprint for conn.
func (c *VersionCache) Get(conn string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.versions[conn]
	return v, ok
}

// Set records the fingerprint of elements for conn.
func (c *VersionCache) Set(conn string, elements []scene.Element) {
	v := scene.Version(elements)
	c.mu.Lock()
	c.versions[conn] = v
	c.mu.Unlock()
}

// Forget drops conn. Called when the connection closes.
func (c *VersionCache) Forget(conn string) {
	c.mu.Lock()
	delete(c.versions, conn)
	c.mu.Unlock()
}

// Len returns the number of tracked connections.
func (c *VersionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.versions)
}
