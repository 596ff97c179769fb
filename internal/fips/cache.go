package fips

import (
	"fmt"
	"sync"

	"github.com/couchcryptid/storm-track-db/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// CachedResolver wraps a CountyResolver with an in-memory LRU cache. Lookups
// are counted on an optional counter labelled method={code,name} and
// result={hit,miss}.
type CachedResolver struct {
	inner   domain.CountyResolver
	codes   *lruCache[int]
	names   *lruCache[domain.CountyRef]
	lookups *prometheus.CounterVec
}

// NewCachedResolver creates a cache decorator around a resolver. lookups may
// be nil.
func NewCachedResolver(inner domain.CountyResolver, maxEntries int, lookups *prometheus.CounterVec) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		codes:   newLRUCache[int](maxEntries),
		names:   newLRUCache[domain.CountyRef](maxEntries),
		lookups: lookups,
	}
}

func (c *CachedResolver) CountyCode(name, state string) (int, error) {
	key := name + "|" + state
	if code, ok := c.codes.get(key); ok {
		c.observe("code", "hit")
		return code, nil
	}
	c.observe("code", "miss")
	code, err := c.inner.CountyCode(name, state)
	if err != nil {
		return 0, err
	}
	c.codes.put(key, code)
	return code, nil
}

func (c *CachedResolver) CountyName(code int) (domain.CountyRef, error) {
	key := fmt.Sprintf("%05d", code)
	if ref, ok := c.names.get(key); ok {
		c.observe("name", "hit")
		return ref, nil
	}
	c.observe("name", "miss")
	ref, err := c.inner.CountyName(code)
	if err != nil {
		return ref, err
	}
	c.names.put(key, ref)
	return ref, nil
}

func (c *CachedResolver) observe(method, result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(method, result).Inc()
	}
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
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

func (c *lruCache[V]) remove(e *entry[V]) {
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

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
