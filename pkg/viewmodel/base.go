package viewmodel

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/go-drift/mvvm/pkg/dispatch"
	"github.com/go-drift/mvvm/pkg/errors"
	"github.com/go-drift/mvvm/pkg/reactive"
	"github.com/go-drift/mvvm/pkg/view"
)

// Host is satisfied by any struct that embeds Base.
// The binding functions accept Host so callers can pass the view-model directly.
type Host interface {
	viewModel() *Base
}

func (b *Base) viewModel() *Base { return b }

// Resolver resolves the view registered for a view-model type.
// The composition root implements it.
type Resolver interface {
	ResolveView(vmType reflect.Type) (view.View, error)
}

// ChangeNotifier is implemented by every view-model that embeds Base. UI
// bindings listen to it to learn which property to re-read.
type ChangeNotifier interface {
	OnPropertyChanged(handler func(property string)) reactive.Disposable
}

// binding is one live property subscription and, for collection bindings,
// the projection handed out on every call.
type binding struct {
	sub        reactive.Disposable
	typ        reflect.Type
	projection any
}

// Base provides the binding engine state for a view-model.
// Embed this struct in your view-model; the zero value is ready to use.
//
// Example:
//
//	type CounterViewModel struct {
//	    viewmodel.Base
//	    store *store.Memory[Model]
//	}
//
//	func (vm *CounterViewModel) Count() int {
//	    return viewmodel.MustBind(vm, vm.store, func(m Model) int { return m.Count }, "Count")
//	}
//
// Base guards its own state, so concurrent calls do not corrupt it. The
// binding contract still assumes a single writer: call Bind, Subscribe,
// AddDisposable and Dispose from the UI thread. Store emissions from other
// goroutines are marshaled through the scheduler before any property-changed
// signal is raised.
type Base struct {
	mu          sync.Mutex
	id          string
	bindings    map[string]binding
	disposables reactive.Composite
	notifier    Notifier
	root        Resolver
	scheduler   dispatch.Scheduler
	disposed    bool
}

// ID returns a unique identifier for this view-model instance.
func (b *Base) ID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.id == "" {
		b.id = uuid.NewString()
	}
	return b.id
}

// Root returns the composition root this view-model was attached to, or nil.
func (b *Base) Root() Resolver {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.root
}

// Scheduler returns the scheduler property-changed signals are raised on.
// Without an explicit scheduler it is dispatch.Default().
func (b *Base) Scheduler() dispatch.Scheduler {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.scheduler == nil {
		return dispatch.Default()
	}
	return b.scheduler
}

// SetScheduler sets the scheduler used by bindings created afterwards.
func (b *Base) SetScheduler(s dispatch.Scheduler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scheduler = s
}

// OnPropertyChanged registers a listener for property-changed signals.
func (b *Base) OnPropertyChanged(handler func(property string)) reactive.Disposable {
	return b.notifier.Listen(handler)
}

// RaisePropertyChanged signals that property changed. Call it from the UI
// thread for properties not driven by a binding.
func (b *Base) RaisePropertyChanged(property string) {
	if b.IsDisposed() {
		return
	}
	b.notifier.Notify(property)
}

// AddDisposable registers a resource released on Dispose. On a disposed
// view-model the resource is released immediately and an error is returned.
func (b *Base) AddDisposable(d reactive.Disposable) error {
	if d == nil {
		return nil
	}
	b.mu.Lock()
	disposed := b.disposed
	b.mu.Unlock()
	if disposed {
		d.Dispose()
		return &errors.DisposedError{Op: "viewmodel.AddDisposable"}
	}
	b.disposables.Add(d)
	return nil
}

// Dispose releases every registered disposable, then every property
// subscription, then forgets the bindings. Later calls are no-ops.
// Override this method if you need custom cleanup, but always call
// b.Base.Dispose() in your override.
func (b *Base) Dispose() {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	bindings := b.bindings
	b.bindings = nil
	b.mu.Unlock()

	b.disposables.Dispose()
	for _, name := range slices.Sorted(maps.Keys(bindings)) {
		bindings[name].sub.Dispose()
	}
	clear(bindings)
	b.notifier.Close()
}

// IsDisposed returns true if this view-model has been disposed.
func (b *Base) IsDisposed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}

// SubscriptionCount returns the number of live property subscriptions.
func (b *Base) SubscriptionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bindings)
}

// HasBinding reports whether property has a live subscription.
func (b *Base) HasBinding(property string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.bindings[property]
	return ok
}

// bindOnce returns the existing binding for property or opens a new one.
// typ identifies the projection type; rebinding a property with another type
// fails. open runs without the lock held because subscribing may deliver
// values synchronously, and handlers may read other bound properties.
func (b *Base) bindOnce(op, property string, typ reflect.Type, open func() (reactive.Disposable, any)) (projection any, created bool, err error) {
	if property == "" {
		return nil, false, &errors.Error{Op: op, Kind: errors.KindRegistration, Err: errors.ErrPropertyName}
	}

	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return nil, false, &errors.DisposedError{Op: op, Property: property}
	}
	if existing, ok := b.bindings[property]; ok {
		b.mu.Unlock()
		return existing.reuse(op, typ)
	}
	b.mu.Unlock()

	sub, proj := open()

	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		sub.Dispose()
		return nil, false, &errors.DisposedError{Op: op, Property: property}
	}
	if existing, ok := b.bindings[property]; ok {
		b.mu.Unlock()
		sub.Dispose()
		return existing.reuse(op, typ)
	}
	if b.bindings == nil {
		b.bindings = make(map[string]binding)
	}
	b.bindings[property] = binding{sub: sub, typ: typ, projection: proj}
	b.mu.Unlock()
	return proj, true, nil
}

func (e binding) reuse(op string, typ reflect.Type) (any, bool, error) {
	if e.typ != typ {
		return nil, false, &errors.TypeMismatchError{Op: op, Want: e.typ.String(), Got: typ.String()}
	}
	return e.projection, false, nil
}

// Attach records the composition root and scheduler for a view-model.
// The root is assigned once: attaching the same root again is a no-op and a
// different root fails with errors.ErrRootAssigned. A nil scheduler keeps the
// current one.
func Attach(h Host, root Resolver, scheduler dispatch.Scheduler) error {
	b := h.viewModel()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return &errors.DisposedError{Op: "viewmodel.Attach"}
	}
	if b.root != nil && b.root != root {
		return fmt.Errorf("viewmodel.Attach %T: %w", h, errors.ErrRootAssigned)
	}
	b.root = root
	if scheduler != nil && b.scheduler == nil {
		b.scheduler = scheduler
	}
	return nil
}

// ResolveView resolves the view registered for VM through the composition
// root h was attached to. Use it to fetch nested views.
func ResolveView[VM any](h Host) (view.View, error) {
	root := h.viewModel().Root()
	if root == nil {
		return nil, fmt.Errorf("viewmodel.ResolveView %T: %w", h, errors.ErrNoRoot)
	}
	return root.ResolveView(reflect.TypeFor[VM]())
}
