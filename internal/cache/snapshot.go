package cache

import (
	"time"

	"golang.org/x/sync/singleflight"

	"despesas/internal/core"
)

// Loader reads a snapshot from durable storage.
type Loader func(name string) ([]core.ExpenseRecord, error)

// SnapshotCache keeps recently read snapshots in memory keyed by name.
// Concurrent misses for the same name share one load. Callers must
// Invalidate a name after writing or deleting it.
type SnapshotCache struct {
	lru   *LRUCache[[]core.ExpenseRecord]
	load  Loader
	group singleflight.Group
}

// NewSnapshotCache wraps load with an LRU of maxSize entries living ttl.
func NewSnapshotCache(load Loader, maxSize int, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		lru:  NewLRUCache[[]core.ExpenseRecord](maxSize, ttl),
		load: load,
	}
}

// Get returns the records of name, loading them on a miss. Errors are not
// cached. The returned slice is shared and must not be modified.
func (c *SnapshotCache) Get(name string) ([]core.ExpenseRecord, error) {
	if records, ok := c.lru.Get(name); ok {
		return records, nil
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		records, err := c.load(name)
		if err != nil {
			return nil, err
		}
		c.lru.Set(name, records)
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]core.ExpenseRecord), nil
}

// Invalidate drops name so the next Get reloads it.
func (c *SnapshotCache) Invalidate(name string) {
	c.group.Forget(name)
	c.lru.Delete(name)
}

// CleanExpired implements Cleaner.
func (c *SnapshotCache) CleanExpired() int {
	return c.lru.CleanExpired()
}

// Size reports how many snapshots are held.
func (c *SnapshotCache) Size() int {
	return c.lru.Size()
}
