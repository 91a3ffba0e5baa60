package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/use-agent/expograb/models"
)

// entry holds a cached run result with its creation timestamp.
type entry struct {
	result    *models.RunResult
	createdAt time.Time
}

// Cache is a simple in-memory cache for completed run results. A full
// scrape run takes minutes, so callers that can tolerate slightly stale
// data ask for a cached result instead of forcing a fresh run.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// New creates a new Cache with the given maximum number of entries.
// A background goroutine runs every 5 minutes to evict expired entries
// (older than 1 hour).
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}

	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the listing URL and the page cap.
// Runs against the same listing with different caps are distinct results.
func Key(baseURL string, maxPages int) string {
	h := sha256.New()
	h.Write([]byte(baseURL))
	fmt.Fprintf(h, "|%d", maxPages)
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached result if it exists and is younger than maxAge.
// maxAge is in milliseconds. If maxAge <= 0, no cache lookup is performed.
// Returns the result and whether it was a cache hit.
func (c *Cache) Get(key string, maxAgeMs int) (*models.RunResult, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	maxAge := time.Duration(maxAgeMs) * time.Millisecond
	if time.Since(e.createdAt) > maxAge {
		return nil, false
	}

	return e.result, true
}

// Set stores a result in the cache. If the cache is at capacity,
// a random entry is evicted to make room.
func (c *Cache) Set(key string, result *models.RunResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		result:    result,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts entries older than 1 hour every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
