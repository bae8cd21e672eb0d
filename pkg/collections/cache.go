package collections

import (
	"slices"
	"sync"

	"github.com/go-drift/mvvm/pkg/reactive"
)

// SourceCache is a keyed reactive collection owned by its creator. Keys are
// unique and derived from values by the key selector given to NewSourceCache.
// Items and the initial change set list values in key insertion order.
type SourceCache[K comparable, V any] struct {
	mu      sync.Mutex
	keyOf   func(V) K
	items   map[K]V
	order   []K
	changes reactive.Subject[CacheChangeSet[K, V]]
}

// NewSourceCache creates an empty cache keyed by keyOf.
func NewSourceCache[K comparable, V any](keyOf func(V) K) *SourceCache[K, V] {
	return &SourceCache[K, V]{
		keyOf: keyOf,
		items: make(map[K]V),
	}
}

// Lookup returns the value stored under key.
func (c *SourceCache[K, V]) Lookup(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

// Len returns the number of entries.
func (c *SourceCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns the keys in insertion order.
func (c *SourceCache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.order)
}

// Items returns the values in key insertion order.
func (c *SourceCache[K, V]) Items() []V {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]V, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.items[k])
	}
	return out
}

// AddOrUpdate stores values, replacing any value with the same key.
func (c *SourceCache[K, V]) AddOrUpdate(values ...V) {
	if len(values) == 0 {
		return
	}
	c.mutate(func() CacheChangeSet[K, V] {
		cs := make(CacheChangeSet[K, V], 0, len(values))
		for _, v := range values {
			k := c.keyOf(v)
			prev, exists := c.items[k]
			c.items[k] = v
			if exists {
				cs = append(cs, CacheChange[K, V]{Reason: Replace, Key: k, Current: v, Previous: prev})
				continue
			}
			c.order = append(c.order, k)
			cs = append(cs, CacheChange[K, V]{Reason: Add, Key: k, Current: v})
		}
		return cs
	})
}

// Remove deletes the given keys and reports how many were present.
func (c *SourceCache[K, V]) Remove(keys ...K) int {
	n := 0
	c.mutate(func() CacheChangeSet[K, V] {
		var cs CacheChangeSet[K, V]
		for _, k := range keys {
			v, ok := c.items[k]
			if !ok {
				continue
			}
			delete(c.items, k)
			c.order = slices.DeleteFunc(c.order, func(x K) bool { return x == k })
			cs = append(cs, CacheChange[K, V]{Reason: Remove, Key: k, Current: v})
			n++
		}
		return cs
	})
	return n
}

// Clear removes every entry.
func (c *SourceCache[K, V]) Clear() {
	c.mutate(func() CacheChangeSet[K, V] {
		cs := make(CacheChangeSet[K, V], 0, len(c.order))
		for _, k := range c.order {
			cs = append(cs, CacheChange[K, V]{Reason: Remove, Key: k, Current: c.items[k]})
		}
		clear(c.items)
		c.order = c.order[:0]
		return cs
	})
}

// Connect returns the change stream. Each subscriber first receives the
// current entries as adds in insertion order, then every later change set.
func (c *SourceCache[K, V]) Connect() reactive.Observable[CacheChangeSet[K, V]] {
	return reactive.ObservableFunc[CacheChangeSet[K, V]](func(handler func(CacheChangeSet[K, V])) reactive.Disposable {
		c.mu.Lock()
		var sub reactive.Disposable
		if len(c.order) == 0 {
			sub = c.changes.Subscribe(handler)
		} else {
			initial := make(CacheChangeSet[K, V], len(c.order))
			for i, k := range c.order {
				initial[i] = CacheChange[K, V]{Reason: Add, Key: k, Current: c.items[k]}
			}
			sub = c.changes.SubscribeQueued(initial, handler)
		}
		c.mu.Unlock()
		c.changes.Flush()
		return sub
	})
}

func (c *SourceCache[K, V]) mutate(fn func() CacheChangeSet[K, V]) {
	c.mu.Lock()
	cs := fn()
	if len(cs) > 0 {
		c.changes.Enqueue(cs)
	}
	c.mu.Unlock()
	c.changes.Flush()
}

// TransformCache maps every value flowing through a cache change stream.
func TransformCache[K comparable, V, U any](src reactive.Observable[CacheChangeSet[K, V]], fn func(V) U) reactive.Observable[CacheChangeSet[K, U]] {
	return reactive.Map(src, func(cs CacheChangeSet[K, V]) CacheChangeSet[K, U] {
		out := make(CacheChangeSet[K, U], len(cs))
		for i, c := range cs {
			out[i] = CacheChange[K, U]{Reason: c.Reason, Key: c.Key, Current: fn(c.Current)}
			if c.Reason == Replace {
				out[i].Previous = fn(c.Previous)
			}
		}
		return out
	})
}
