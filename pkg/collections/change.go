// Package collections adapts externally-owned reactive collections into
// read-only, change-reflecting projections a UI can bind to.
//
// A [SourceList] is an insertion-ordered list and a [SourceCache] is a keyed
// collection. The owner mutates them; consumers call Connect to receive the
// current contents as one change set followed by every later change set.
// Pipelines are built from plain functions:
//
//	changes := collections.TransformList(people.Connect(), toRow)
//	rows, sub := collections.BindList(changes, dispatch.Immediate)
//	defer sub.Dispose()
//	// rows.Items() now tracks people without manual refresh.
package collections

// ChangeReason describes what a single change did.
type ChangeReason int

const (
	// Add inserts Item at Index.
	Add ChangeReason = iota
	// Remove deletes the item at Index. Item holds the removed value.
	Remove
	// Replace swaps the item at Index for Item. Previous holds the old value.
	// For caches, Replace is an update of an existing key.
	Replace
	// Move takes the item at PreviousIndex and re-inserts Item at Index.
	Move
)

func (r ChangeReason) String() string {
	switch r {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Replace:
		return "replace"
	case Move:
		return "move"
	default:
		return "unknown"
	}
}

// Change is one positional change to a list.
type Change[T any] struct {
	Reason        ChangeReason
	Item          T
	Previous      T
	Index         int
	PreviousIndex int
}

// ChangeSet is an ordered batch of list changes. Changes apply in order and
// each index refers to the list as left by the preceding change.
type ChangeSet[T any] []Change[T]

// CacheChange is one keyed change to a cache. Reason is Add, Replace or
// Remove.
type CacheChange[K comparable, V any] struct {
	Reason   ChangeReason
	Key      K
	Current  V
	Previous V
}

// CacheChangeSet is an ordered batch of cache changes.
type CacheChangeSet[K comparable, V any] []CacheChange[K, V]

func applyChanges[T any](items []T, cs ChangeSet[T]) []T {
	for _, c := range cs {
		switch c.Reason {
		case Add:
			i := min(max(c.Index, 0), len(items))
			items = insertAt(items, i, c.Item)
		case Remove:
			if c.Index >= 0 && c.Index < len(items) {
				items = removeAt(items, c.Index)
			}
		case Replace:
			if c.Index >= 0 && c.Index < len(items) {
				items[c.Index] = c.Item
			}
		case Move:
			if c.PreviousIndex >= 0 && c.PreviousIndex < len(items) {
				items = removeAt(items, c.PreviousIndex)
			}
			i := min(max(c.Index, 0), len(items))
			items = insertAt(items, i, c.Item)
		}
	}
	return items
}

func insertAt[T any](items []T, i int, v T) []T {
	var zero T
	items = append(items, zero)
	copy(items[i+1:], items[i:])
	items[i] = v
	return items
}

func removeAt[T any](items []T, i int) []T {
	var zero T
	copy(items[i:], items[i+1:])
	items[len(items)-1] = zero
	return items[:len(items)-1]
}
