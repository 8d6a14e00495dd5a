package cache

import (
	"fmt"
	"sync"
	"time"

	"wisewallet/internal/core"
)

// SnapshotCache holds reconciled month summaries keyed by owner and month.
//
// Every owner has a generation counter. A table change bumps it, which makes
// all cached summaries for that owner stale, and a refresh computed under an
// older generation is discarded instead of overwriting fresher data.
type SnapshotCache struct {
	mu          sync.Mutex
	entries     *LRUCache[snapshotEntry]
	generations map[string]uint64
}

type snapshotEntry struct {
	summary    core.MonthSummary
	generation uint64
}

func NewSnapshotCache(maxSize int, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		entries:     NewLRUCache[snapshotEntry](maxSize, ttl),
		generations: make(map[string]uint64),
	}
}

// Generation returns the owner's current generation. Read it before
// computing a summary and pass it to Put.
func (c *SnapshotCache) Generation(ownerID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[ownerID]
}

// Invalidate bumps the owner's generation, making every cached summary for
// that owner stale. Returns the new generation.
func (c *SnapshotCache) Invalidate(ownerID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[ownerID]++
	return c.generations[ownerID]
}

// Get returns a cached summary if it is present and was computed under the
// owner's current generation.
func (c *SnapshotCache) Get(ownerID string, year int, month time.Month) (core.MonthSummary, bool) {
	entry, ok := c.entries.Get(snapshotKey(ownerID, year, month))
	if !ok {
		return core.MonthSummary{}, false
	}
	if entry.generation != c.Generation(ownerID) {
		return core.MonthSummary{}, false
	}
	return entry.summary, true
}

// Put stores a summary computed under the given generation. It reports
// whether the summary was accepted; a false return means the data changed
// while the summary was being computed.
func (c *SnapshotCache) Put(ownerID string, year int, month time.Month, summary core.MonthSummary, generation uint64) bool {
	if generation != c.Generation(ownerID) {
		return false
	}
	c.entries.Set(snapshotKey(ownerID, year, month), snapshotEntry{
		summary:    summary,
		generation: generation,
	})
	return true
}

// CleanExpired implements Cleaner.
func (c *SnapshotCache) CleanExpired() int {
	return c.entries.CleanExpired()
}

// Size returns the number of cached summaries, stale ones included.
func (c *SnapshotCache) Size() int {
	return c.entries.Size()
}

func snapshotKey(ownerID string, year int, month time.Month) string {
	return fmt.Sprintf("%s|%04d-%02d", ownerID, year, int(month))
}
