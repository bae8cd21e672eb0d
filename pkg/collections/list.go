package collections

import (
	"slices"
	"sync"

	"github.com/go-drift/mvvm/pkg/reactive"
)

// SourceList is an insertion-ordered reactive list owned by its creator.
// All methods are safe for concurrent use; handlers receive change sets in
// mutation order.
//
// The zero value is ready to use.
type SourceList[T any] struct {
	mu      sync.Mutex
	items   []T
	changes reactive.Subject[ChangeSet[T]]
}

// NewSourceList creates a list holding items.
func NewSourceList[T any](items ...T) *SourceList[T] {
	return &SourceList[T]{items: slices.Clone(items)}
}

// Items returns a copy of the current contents.
func (l *SourceList[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Len returns the number of items.
func (l *SourceList[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Add appends items.
func (l *SourceList[T]) Add(items ...T) {
	if len(items) == 0 {
		return
	}
	l.mutate(func() ChangeSet[T] {
		cs := make(ChangeSet[T], 0, len(items))
		for _, item := range items {
			cs = append(cs, Change[T]{Reason: Add, Item: item, Index: len(l.items)})
			l.items = append(l.items, item)
		}
		return cs
	})
}

// Insert inserts item at index. It reports false if index is out of range.
func (l *SourceList[T]) Insert(index int, item T) bool {
	ok := false
	l.mutate(func() ChangeSet[T] {
		if index < 0 || index > len(l.items) {
			return nil
		}
		ok = true
		l.items = insertAt(l.items, index, item)
		return ChangeSet[T]{{Reason: Add, Item: item, Index: index}}
	})
	return ok
}

// RemoveAt removes the item at index.
func (l *SourceList[T]) RemoveAt(index int) (T, bool) {
	var removed T
	ok := false
	l.mutate(func() ChangeSet[T] {
		if index < 0 || index >= len(l.items) {
			return nil
		}
		removed, ok = l.items[index], true
		l.items = removeAt(l.items, index)
		return ChangeSet[T]{{Reason: Remove, Item: removed, Index: index}}
	})
	return removed, ok
}

// RemoveFunc removes every item for which match returns true and reports how
// many were removed.
func (l *SourceList[T]) RemoveFunc(match func(T) bool) int {
	n := 0
	l.mutate(func() ChangeSet[T] {
		var cs ChangeSet[T]
		for i := 0; i < len(l.items); {
			if !match(l.items[i]) {
				i++
				continue
			}
			cs = append(cs, Change[T]{Reason: Remove, Item: l.items[i], Index: i})
			l.items = removeAt(l.items, i)
			n++
		}
		return cs
	})
	return n
}

// Replace swaps the item at index for item.
func (l *SourceList[T]) Replace(index int, item T) bool {
	ok := false
	l.mutate(func() ChangeSet[T] {
		if index < 0 || index >= len(l.items) {
			return nil
		}
		ok = true
		prev := l.items[index]
		l.items[index] = item
		return ChangeSet[T]{{Reason: Replace, Item: item, Previous: prev, Index: index}}
	})
	return ok
}

// Move moves the item at from so that it ends up at to.
func (l *SourceList[T]) Move(from, to int) bool {
	ok := false
	l.mutate(func() ChangeSet[T] {
		if from < 0 || from >= len(l.items) || to < 0 || to >= len(l.items) {
			return nil
		}
		ok = true
		if from == to {
			return nil
		}
		item := l.items[from]
		l.items = insertAt(removeAt(l.items, from), to, item)
		return ChangeSet[T]{{Reason: Move, Item: item, Index: to, PreviousIndex: from}}
	})
	return ok
}

// Clear removes every item.
func (l *SourceList[T]) Clear() {
	l.mutate(func() ChangeSet[T] {
		cs := make(ChangeSet[T], 0, len(l.items))
		for i := len(l.items) - 1; i >= 0; i-- {
			cs = append(cs, Change[T]{Reason: Remove, Item: l.items[i], Index: i})
		}
		clear(l.items)
		l.items = l.items[:0]
		return cs
	})
}

// Connect returns the change stream. Each subscriber first receives the
// current contents as a change set of adds, then every later change set.
func (l *SourceList[T]) Connect() reactive.Observable[ChangeSet[T]] {
	return reactive.ObservableFunc[ChangeSet[T]](func(handler func(ChangeSet[T])) reactive.Disposable {
		l.mu.Lock()
		var sub reactive.Disposable
		if len(l.items) == 0 {
			sub = l.changes.Subscribe(handler)
		} else {
			initial := make(ChangeSet[T], len(l.items))
			for i, item := range l.items {
				initial[i] = Change[T]{Reason: Add, Item: item, Index: i}
			}
			sub = l.changes.SubscribeQueued(initial, handler)
		}
		l.mu.Unlock()
		l.changes.Flush()
		return sub
	})
}

func (l *SourceList[T]) mutate(fn func() ChangeSet[T]) {
	l.mu.Lock()
	cs := fn()
	if len(cs) > 0 {
		l.changes.Enqueue(cs)
	}
	l.mu.Unlock()
	l.changes.Flush()
}

// TransformList maps every item flowing through a list change stream.
func TransformList[T, U any](src reactive.Observable[ChangeSet[T]], fn func(T) U) reactive.Observable[ChangeSet[U]] {
	return reactive.Map(src, func(cs ChangeSet[T]) ChangeSet[U] {
		out := make(ChangeSet[U], len(cs))
		for i, c := range cs {
			out[i] = Change[U]{
				Reason:        c.Reason,
				Item:          fn(c.Item),
				Index:         c.Index,
				PreviousIndex: c.PreviousIndex,
			}
			if c.Reason == Replace {
				out[i].Previous = fn(c.Previous)
			}
		}
		return out
	})
}
