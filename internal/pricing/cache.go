package pricing

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/piwi3910/partquote/internal/model"
)

// CacheObserver is notified of cache traffic. internal/metrics implements
// it; nil observers are ignored.
type CacheObserver interface {
	CacheHit()
	CacheMiss()
	CacheEvict()
}

// Cache is a bounded price cache with oldest-first eviction. It is safe for
// concurrent use.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front is oldest
	items    map[string]*list.Element
	observer CacheObserver
}

type cacheEntry struct {
	key       string
	breakdown model.PricingBreakdown
}

// NewCache creates a cache holding at most capacity breakdowns. A capacity
// below 1 yields a cache that stores nothing.
func NewCache(capacity int, observer CacheObserver) *Cache {
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		observer: observer,
	}
}

// Get returns a copy of the cached breakdown under key with a fresh quote ID.
func (c *Cache) Get(key string) (*model.PricingBreakdown, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	el, ok := c.items[key]
	var b model.PricingBreakdown
	if ok {
		b = el.Value.(*cacheEntry).breakdown
	}
	c.mu.Unlock()

	if !ok {
		c.notify(CacheObserver.CacheMiss)
		return nil, false
	}
	c.notify(CacheObserver.CacheHit)
	out := clone(b)
	out.QuoteID = uuid.NewString()
	return &out, true
}

// Put stores a copy of b, evicting the oldest entries beyond capacity.
func (c *Cache) Put(key string, b *model.PricingBreakdown) {
	if c == nil || b == nil || c.capacity < 1 {
		return
	}
	var evicted int
	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).breakdown = clone(*b)
	} else {
		c.items[key] = c.order.PushBack(&cacheEntry{key: key, breakdown: clone(*b)})
		for c.order.Len() > c.capacity {
			oldest := c.order.Front()
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
			evicted++
		}
	}
	c.mu.Unlock()

	for i := 0; i < evicted; i++ {
		c.notify(CacheObserver.CacheEvict)
	}
}

// Len returns the number of cached breakdowns.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
	c.mu.Unlock()
}

func (c *Cache) notify(fn func(CacheObserver)) {
	if c.observer != nil {
		fn(c.observer)
	}
}

func clone(b model.PricingBreakdown) model.PricingBreakdown {
	b.Notes = append([]string(nil), b.Notes...)
	return b
}

// Fingerprint is the cache key of a pricing request. Distinct process,
// material or quantity always produce distinct keys.
func Fingerprint(g *model.GeometryData, process model.Process, material, finish string, qty int, tol model.ToleranceClass, lead model.LeadTime) string {
	bb := g.BoundingBox
	return fmt.Sprintf("v=%.4f|bb=%.4fx%.4fx%.4f|c=%s|p=%s|m=%s|q=%d|f=%s|t=%s|l=%s",
		g.Volume, bb.X, bb.Y, bb.Z, g.Complexity, process, material, qty, finish, tol, lead)
}
