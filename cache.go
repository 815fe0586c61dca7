package typbatch

import "sync"

// FileCache is a concurrent map from FileID to FileSlot, shared by every
// compilation that opts into shared-cache mode. Entry insertion takes
// the write lock; slot mutation happens while that same lock is held, so
// no per-slot locking is needed.
//
// The cache is keyed by FileID alone, not by project root. It is meant
// for reuse within one project; call Clear when switching projects or
// when dependency files change underneath it.
type FileCache struct {
	mu    sync.RWMutex
	slots map[FileID]*FileSlot
	hooks []func()
}

// NewFileCache creates an empty file cache.
func NewFileCache() *FileCache {
	return &FileCache{slots: make(map[FileID]*FileSlot)}
}

// Source resolves the parsed source for id through the cache.
func (c *FileCache) Source(id FileID, run *Run, loader *Loader) (*Source, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot(id).Source(run, loader)
}

// Bytes resolves the raw bytes for id through the cache.
func (c *FileCache) Bytes(id FileID, run *Run, loader *Loader) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot(id).Bytes(run, loader)
}

// slot finds or inserts the slot for id. Callers must hold the write
// lock.
func (c *FileCache) slot(id FileID) *FileSlot {
	s, ok := c.slots[id]
	if !ok {
		s = newFileSlot(id)
		c.slots[id] = s
	}
	return s
}

// Len returns the number of cached slots.
func (c *FileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.slots)
}

// Clear drops every slot and fires the registered evict hooks, so
// engine-level memoization keyed on now-stale content is dropped with
// it. This is the only invalidation path; individual slots are never
// evicted.
func (c *FileCache) Clear() {
	c.mu.Lock()
	c.slots = make(map[FileID]*FileSlot)
	hooks := append([]func(){}, c.hooks...)
	c.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

// OnClear registers a hook invoked after every Clear. Used to evict
// engine caches that memoize on file content.
func (c *FileCache) OnClear(hook func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, hook)
}

var (
	sharedCacheOnce sync.Once
	sharedCache     *FileCache
)

// SharedCache returns the process-wide file cache. Initialized on first
// use; all callers observe the same instance.
func SharedCache() *FileCache {
	sharedCacheOnce.Do(func() {
		sharedCache = NewFileCache()
	})
	return sharedCache
}
