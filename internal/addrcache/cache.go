// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package addrcache provides a generic bounded key/value store with
// least-recently-used eviction. Set reports the value it replaced, so callers
// can diff the previous and the current entry.
package addrcache

import (
	"container/list"
	"errors"
	"sync"
)

// ErrInvalidCapacity is returned when a cache is constructed with a capacity of zero or less.
var ErrInvalidCapacity = errors.New("cache capacity must be greater than zero")

// Cache is a bounded key/value store with LRU eviction. Capacity is fixed at
// construction time. All operations are safe for concurrent use and run in
// amortized constant time.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	index    map[K]*list.Element
}

type cacheEntry[K comparable, V any] struct {
	key   K
	value V
}

// New returns a Cache with the given fixed capacity. A capacity of zero or
// less is a construction-time misconfiguration and returns ErrInvalidCapacity.
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Cache[K, V]{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[K]*list.Element, capacity),
	}, nil
}

// Get looks up the value for key. A hit promotes the entry to most-recently-used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*cacheEntry[K, V]).value, true
}

// Set inserts or overwrites the value for key and promotes the entry to
// most-recently-used. It returns the previous value for the key, if any.
// If inserting a new key would exceed the capacity, the least-recently-used
// entry is evicted; the entry just inserted is never the eviction victim.
func (c *Cache[K, V]) Set(key K, value V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var previous V
	if element, ok := c.index[key]; ok {
		entry := element.Value.(*cacheEntry[K, V])
		previous = entry.value
		entry.value = value
		c.order.MoveToFront(element)
		return previous, true
	}

	c.index[key] = c.order.PushFront(&cacheEntry[K, V]{key: key, value: value})
	if c.order.Len() > c.capacity {
		c.evictOldest()
	}
	return previous, false
}

// Delete removes the entry for key, if present.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.index[key]; ok {
		c.order.Remove(element)
		delete(c.index, key)
	}
}

// Size returns the current number of live entries. The result never exceeds
// the configured capacity.
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the fixed capacity the cache was constructed with.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// evictOldest removes the entry at the back of the recency list. Entries with
// identical recency keep their insertion order in the list, so the earliest
// inserted of a tie is evicted first.
func (c *Cache[K, V]) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.order.Remove(oldest)
	delete(c.index, oldest.Value.(*cacheEntry[K, V]).key)
}
