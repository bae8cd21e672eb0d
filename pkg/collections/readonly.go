package collections

import (
	"cmp"
	"slices"
	"sync"

	"github.com/go-drift/mvvm/pkg/dispatch"
	"github.com/go-drift/mvvm/pkg/reactive"
)

// ReadOnlyList is an ordered projection kept up to date by a pipeline. UI
// code reads it and listens to Changes; only the pipeline writes to it.
type ReadOnlyList[T any] struct {
	mu      sync.RWMutex
	items   []T
	changes reactive.Subject[ChangeSet[T]]
}

// Items returns a copy of the current contents.
func (l *ReadOnlyList[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// Len returns the number of items.
func (l *ReadOnlyList[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// At returns the item at index i. It panics if i is out of range.
func (l *ReadOnlyList[T]) At(i int) T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items[i]
}

// Changes streams the change sets applied to the list, after they are
// applied.
func (l *ReadOnlyList[T]) Changes() reactive.Observable[ChangeSet[T]] {
	return &l.changes
}

func (l *ReadOnlyList[T]) apply(cs ChangeSet[T]) {
	if len(cs) == 0 {
		return
	}
	l.mu.Lock()
	l.items = applyChanges(l.items, cs)
	l.mu.Unlock()
	l.changes.Next(cs)
}

// BindList opens a pipeline from a list change stream into a new
// ReadOnlyList. Change sets are applied through scheduler; a nil scheduler
// applies them on the emitting goroutine. Dispose the returned subscription
// to stop the pipeline.
func BindList[T any](src reactive.Observable[ChangeSet[T]], scheduler dispatch.Scheduler) (*ReadOnlyList[T], reactive.Disposable) {
	out := &ReadOnlyList[T]{}
	sub := reactive.ObserveOn(src, scheduler).Subscribe(out.apply)
	return out, sub
}

// BindCache opens a pipeline from a cache change stream into a new
// ReadOnlyList ordered by sortBy. Items that compare equal, and every item
// when sortBy is nil, keep the order in which their keys were first added.
// Updating a key keeps its insertion position; removing and re-adding it
// moves it to the end of that order.
func BindCache[K comparable, V any](src reactive.Observable[CacheChangeSet[K, V]], sortBy func(a, b V) int, scheduler dispatch.Scheduler) (*ReadOnlyList[V], reactive.Disposable) {
	out := &ReadOnlyList[V]{}
	s := &sorter[K, V]{sortBy: sortBy}
	sub := reactive.ObserveOn(src, scheduler).Subscribe(func(cs CacheChangeSet[K, V]) {
		out.apply(s.apply(cs))
	})
	return out, sub
}

type sortedEntry[K comparable, V any] struct {
	key   K
	seq   uint64
	value V
}

type sorter[K comparable, V any] struct {
	mu      sync.Mutex
	sortBy  func(a, b V) int
	entries []sortedEntry[K, V]
	nextSeq uint64
}

func (s *sorter[K, V]) compare(a, b sortedEntry[K, V]) int {
	if s.sortBy != nil {
		if c := s.sortBy(a.value, b.value); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.seq, b.seq)
}

func (s *sorter[K, V]) indexOf(key K) int {
	return slices.IndexFunc(s.entries, func(e sortedEntry[K, V]) bool { return e.key == key })
}

func (s *sorter[K, V]) insert(e sortedEntry[K, V]) int {
	pos, _ := slices.BinarySearchFunc(s.entries, e, s.compare)
	s.entries = insertAt(s.entries, pos, e)
	return pos
}

func (s *sorter[K, V]) inPlace(i int) bool {
	e := s.entries[i]
	if i > 0 && s.compare(s.entries[i-1], e) > 0 {
		return false
	}
	if i < len(s.entries)-1 && s.compare(e, s.entries[i+1]) > 0 {
		return false
	}
	return true
}

func (s *sorter[K, V]) apply(cs CacheChangeSet[K, V]) ChangeSet[V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out ChangeSet[V]
	for _, c := range cs {
		switch c.Reason {
		case Add, Replace:
			i := s.indexOf(c.Key)
			if i < 0 {
				seq := s.nextSeq
				s.nextSeq++
				pos := s.insert(sortedEntry[K, V]{key: c.Key, seq: seq, value: c.Current})
				out = append(out, Change[V]{Reason: Add, Item: c.Current, Index: pos})
				continue
			}
			prev := s.entries[i].value
			s.entries[i].value = c.Current
			if s.inPlace(i) {
				out = append(out, Change[V]{Reason: Replace, Item: c.Current, Previous: prev, Index: i})
				continue
			}
			e := s.entries[i]
			s.entries = removeAt(s.entries, i)
			pos := s.insert(e)
			out = append(out, Change[V]{Reason: Move, Item: c.Current, Previous: prev, Index: pos, PreviousIndex: i})
		case Remove:
			i := s.indexOf(c.Key)
			if i < 0 {
				continue
			}
			removed := s.entries[i].value
			s.entries = removeAt(s.entries, i)
			out = append(out, Change[V]{Reason: Remove, Item: removed, Index: i})
		}
	}
	return out
}
