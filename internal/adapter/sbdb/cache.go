package sbdb

import (
	"context"
	"sync"

	"github.com/orbitwatch/neo-hazard-etl/internal/domain"
	"github.com/orbitwatch/neo-hazard-etl/internal/observability"
)

// CachedSource wraps a MOID lookup with an in-memory LRU cache keyed by
// designation. Only lookups that produced a value are cached, so transient
// "not found" responses can be retried on a later run.
type CachedSource struct {
	inner   domain.MOIDSource
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a MOID source.
func NewCachedSource(inner domain.MOIDSource, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) EarthMOID(ctx context.Context, designation string) (*float64, error) {
	if moid, ok := c.cache.get(designation); ok {
		c.metrics.SBDBCache.WithLabelValues("hit").Inc()
		return moid, nil
	}
	c.metrics.SBDBCache.WithLabelValues("miss").Inc()

	moid, err := c.inner.EarthMOID(ctx, designation)
	if err != nil {
		return nil, err
	}
	if moid != nil {
		c.cache.put(designation, moid)
	}
	return moid, nil
}

// lruCache is a small thread-safe LRU for MOID lookups.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value *float64
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (*float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value *float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
