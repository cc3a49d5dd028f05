package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wbrown/graphmatch/schemas"
)

const (
	defaultPlanCacheSize = 1000
	defaultPlanCacheTTL  = 5 * time.Minute
)

// PlanCache caches compiled plans keyed by pattern text and strategy,
// avoiding re-planning an identical query. Grounded on the teacher's
// datalog/planner/cache.go PlanCache: map+RWMutex, atomic hit/miss
// counters, lazy expired-then-oldest eviction on Set.
type PlanCache struct {
	cache map[string]*cachedPlanEntry
	mu    sync.RWMutex

	hits   int64
	misses int64

	maxSize int
	ttl     time.Duration
}

type cachedPlanEntry struct {
	plan      schemas.PlanData
	timestamp time.Time
}

// NewPlanCache builds a PlanCache; maxSize <= 0 defaults to 1000
// entries, ttl <= 0 defaults to 5 minutes.
func NewPlanCache(maxSize int, ttl time.Duration) *PlanCache {
	if maxSize <= 0 {
		maxSize = defaultPlanCacheSize
	}
	if ttl <= 0 {
		ttl = defaultPlanCacheTTL
	}
	return &PlanCache{cache: map[string]*cachedPlanEntry{}, maxSize: maxSize, ttl: ttl}
}

// Get retrieves a cached plan for patternText/strategy if present and
// unexpired.
func (c *PlanCache) Get(patternText string, strategy OrderStrategy) (schemas.PlanData, bool) {
	if c == nil {
		return schemas.PlanData{}, false
	}

	key := c.computeKey(patternText, strategy)

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[key]
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return schemas.PlanData{}, false
	}
	if time.Since(entry.timestamp) > c.ttl {
		atomic.AddInt64(&c.misses, 1)
		return schemas.PlanData{}, false
	}

	atomic.AddInt64(&c.hits, 1)
	return entry.plan, true
}

// Set stores plan for patternText/strategy, evicting expired then
// oldest entries if the cache is at capacity.
func (c *PlanCache) Set(patternText string, strategy OrderStrategy, plan schemas.PlanData) {
	if c == nil {
		return
	}

	key := c.computeKey(patternText, strategy)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.cache) >= c.maxSize {
		c.evictExpired()
		if len(c.cache) >= c.maxSize {
			c.evictOldest()
		}
	}

	c.cache[key] = &cachedPlanEntry{plan: plan, timestamp: time.Now()}
}

// Clear empties the cache and resets hit/miss counters.
func (c *PlanCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = map[string]*cachedPlanEntry{}
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

// Stats reports hit/miss counts and current size.
func (c *PlanCache) Stats() (hits, misses int64, size int) {
	if c == nil {
		return 0, 0, 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses), len(c.cache)
}

func (c *PlanCache) computeKey(patternText string, strategy OrderStrategy) string {
	h := sha256.New()
	fmt.Fprintf(h, "PATTERN:%s;STRATEGY:%d;", patternText, strategy)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *PlanCache) evictExpired() {
	now := time.Now()
	for key, entry := range c.cache {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.cache, key)
		}
	}
}

func (c *PlanCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for key, entry := range c.cache {
		if oldestKey == "" || entry.timestamp.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.timestamp
		}
	}
	if oldestKey != "" {
		delete(c.cache, oldestKey)
	}
}
