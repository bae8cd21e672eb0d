// Package viewmodel binds view-model properties to immutable-state stores.
//
// A view-model embeds [Base] and exposes each property through a getter that
// calls one of the binding functions with an explicit property name:
//
//	func (vm *CounterViewModel) Count() int {
//	    return viewmodel.MustBind(vm, vm.store, func(m Model) int { return m.Count }, "Count")
//	}
//
// The first call for a property subscribes it to the store's change stream;
// later calls only read the current model. Each later model whose projection
// differs from the previous one raises a property-changed signal on the
// view-model's scheduler, which UI bindings observe through
// [Base.OnPropertyChanged].
//
// # Lifecycle
//
// A view-model is constructed, gains bindings lazily as its getters are read,
// and is disposed when its view is torn down. [Base.Dispose] releases the
// resources registered with [Base.AddDisposable] and [Subscribe], newest
// first, then every property subscription. Binding a disposed view-model
// fails with *errors.DisposedError.
//
// # Threading
//
// Getters, Dispose and the other Base methods belong to the UI thread. Stores
// may emit on any goroutine; signals are marshaled through the scheduler
// given to [Attach] or [Base.SetScheduler], defaulting to dispatch.Default().
package viewmodel
