package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache evicts by entry count, optional total weight, and TTL.
type LRUCache[T any] struct {
	mu         sync.Mutex
	maxEntries int
	maxWeight  int64 // 0 disables weight-based eviction
	weight     int64
	weigh      func(T) int64
	ttl        time.Duration
	now        func() time.Time
	items      map[string]*list.Element
	lru        *list.List
	hits       uint64
	misses     uint64
}

type cacheItem[T any] struct {
	key       string
	data      T
	weight    int64
	expiresAt time.Time
}

var _ Cache[int] = (*LRUCache[int])(nil)

// NewLRUCache creates a new LRU cache with TTL
func NewLRUCache[T any](maxEntries int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		items:      make(map[string]*list.Element),
		lru:        list.New(),
	}
}

// WithMaxWeight bounds the summed weight of all entries. A single entry
// heavier than max is never stored.
func (c *LRUCache[T]) WithMaxWeight(max int64, weigh func(T) int64) *LRUCache[T] {
	c.maxWeight = max
	c.weigh = weigh
	return c
}

// Get retrieves a value from the cache
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		c.misses++
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if c.now().After(item.expiresAt) {
		c.removeElement(elem)
		c.misses++
		return zero, false
	}

	c.lru.MoveToFront(elem)
	c.hits++
	return item.data, true
}

// Set stores a value in the cache
func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: c.now().Add(c.ttl),
	}
	if c.weigh != nil {
		item.weight = c.weigh(data)
	}
	if c.maxWeight > 0 && item.weight > c.maxWeight {
		if elem, exists := c.items[key]; exists {
			c.removeElement(elem)
		}
		return
	}

	if elem, exists := c.items[key]; exists {
		c.weight -= elem.Value.(*cacheItem[T]).weight
		elem.Value = item
		c.weight += item.weight
		c.lru.MoveToFront(elem)
	} else {
		c.items[key] = c.lru.PushFront(item)
		c.weight += item.weight
	}

	for c.lru.Len() > c.maxEntries || (c.maxWeight > 0 && c.weight > c.maxWeight) {
		c.removeElement(c.lru.Back())
	}
}

// Delete removes a key from the cache
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *LRUCache[T]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.items)
	c.items = make(map[string]*list.Element)
	c.lru.Init()
	c.weight = 0
	return n
}

func (c *LRUCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.weight -= item.weight
	c.lru.Remove(elem)
}

// CleanExpired removes all expired entries and returns count of removed items
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.lru.Front(); elem != nil; {
		next := elem.Next()
		if now.After(elem.Value.(*cacheItem[T]).expiresAt) {
			c.removeElement(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// Size returns the current number of items in the cache
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Weight returns the summed weight of the stored entries.
func (c *LRUCache[T]) Weight() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weight
}

// Stats returns hit and miss counts since creation.
func (c *LRUCache[T]) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
