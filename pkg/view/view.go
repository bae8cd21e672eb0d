// Package view defines what the composition layer needs from a UI view: a
// data context slot and a teardown notification.
//
// Views belong to the UI framework. Embed [Base] in a framework view type to
// satisfy [View], and call [Base.Detach] when the framework tears the view
// down:
//
//	type CounterPage struct {
//	    view.Base
//	    title string
//	}
package view

import "sync"

// View is a UI element that displays a view-model.
type View interface {
	// DataContext returns the bound view-model, or nil if none is bound.
	DataContext() any
	// SetDataContext binds a view-model to the view.
	SetDataContext(vm any)
	// OnDetached registers a callback run once when the host tears the view
	// down. It returns a function that unregisters the callback.
	OnDetached(callback func()) (unregister func())
}

// Factory constructs a new, unbound view.
type Factory func() View

// Base provides the data context slot and teardown callbacks. Embed it in a
// view struct; the zero value is ready to use.
type Base struct {
	mu          sync.Mutex
	dataContext any
	detachers   []func()
	detached    bool
}

// DataContext returns the bound view-model.
func (b *Base) DataContext() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dataContext
}

// SetDataContext binds vm to the view.
func (b *Base) SetDataContext(vm any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dataContext = vm
}

// OnDetached registers a callback to run when the view is detached.
// Registering on an already detached view runs the callback immediately.
func (b *Base) OnDetached(callback func()) func() {
	if callback == nil {
		return func() {}
	}

	b.mu.Lock()
	if b.detached {
		b.mu.Unlock()
		callback()
		return func() {}
	}
	index := len(b.detachers)
	b.detachers = append(b.detachers, callback)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if index < len(b.detachers) {
			b.detachers[index] = nil
		}
	}
}

// Detach runs the registered callbacks in reverse order and clears the data
// context. It is called by the host when the view is torn down; later calls
// are no-ops.
func (b *Base) Detach() {
	b.mu.Lock()
	if b.detached {
		b.mu.Unlock()
		return
	}
	b.detached = true
	callbacks := b.detachers
	b.detachers = nil
	b.dataContext = nil
	b.mu.Unlock()

	for i := len(callbacks) - 1; i >= 0; i-- {
		if callbacks[i] != nil {
			callbacks[i]()
		}
	}
}

// IsDetached reports whether Detach has been called.
func (b *Base) IsDetached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.detached
}
