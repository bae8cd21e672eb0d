package reactive

import (
	"cmp"
	"slices"
	"sync"

	"github.com/go-drift/mvvm/pkg/errors"
)

// Disposable is a resource released exactly once by Dispose.
// Implementations must tolerate repeated calls.
type Disposable interface {
	Dispose()
}

// DisposableFunc adapts a cleanup function into a Disposable.
// The function runs on the first Dispose only.
func DisposableFunc(fn func()) Disposable {
	return &funcDisposable{fn: fn}
}

type funcDisposable struct {
	once sync.Once
	fn   func()
}

func (d *funcDisposable) Dispose() {
	d.once.Do(func() {
		if d.fn != nil {
			d.fn()
		}
	})
}

// Empty returns a Disposable that does nothing.
func Empty() Disposable { return DisposableFunc(nil) }

// Composite owns a set of disposables and releases them together.
// Disposables run in reverse registration order. Adding to a disposed
// Composite disposes the resource immediately. A disposable that panics is
// reported through errors.ReportPanic and the rest still run.
//
// The zero value is ready to use.
type Composite struct {
	mu       sync.Mutex
	items    []entry // ordered by token
	next     uint64
	disposed bool
}

type entry struct {
	token uint64
	d     Disposable
}

// Add registers d for disposal. It returns an unregister function that
// removes d without disposing it.
func (c *Composite) Add(d Disposable) (unregister func()) {
	if d == nil {
		return func() {}
	}

	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		d.Dispose()
		return func() {}
	}
	c.next++
	token := c.next
	c.items = append(c.items, entry{token: token, d: d})
	c.mu.Unlock()

	return func() { c.remove(token) }
}

func (c *Composite) remove(token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, found := slices.BinarySearchFunc(c.items, token, func(e entry, t uint64) int {
		return cmp.Compare(e.token, t)
	})
	if found {
		c.items = slices.Delete(c.items, i, i+1)
	}
}

// Len returns the number of live registrations.
func (c *Composite) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Dispose releases every registered disposable. Safe to call more than once.
func (c *Composite) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	items := c.items
	c.items = nil
	c.mu.Unlock()

	for i := len(items) - 1; i >= 0; i-- {
		disposeRecovered(items[i].d)
	}
}

func disposeRecovered(d Disposable) {
	defer errors.Recover("reactive.Composite")
	d.Dispose()
}

// IsDisposed reports whether Dispose has been called.
func (c *Composite) IsDisposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}
