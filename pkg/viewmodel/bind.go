package viewmodel

import (
	"reflect"

	"github.com/go-drift/mvvm/pkg/collections"
	"github.com/go-drift/mvvm/pkg/errors"
	"github.com/go-drift/mvvm/pkg/reactive"
	"github.com/go-drift/mvvm/pkg/store"
)

// Bind returns project(s.Model()) and, on the first call for property,
// subscribes property to the store. Later models raise a property-changed
// signal for property only when their projection differs from the last one.
// Call it from the property getter:
//
//	func (vm *CounterViewModel) Count() int {
//	    n, _ := viewmodel.Bind(vm, vm.store, func(m Model) int { return m.Count }, "Count")
//	    return n
//	}
func Bind[M any, T comparable](h Host, s store.Store[M], project func(M) T, property string) (T, error) {
	return bindDistinct(h, "viewmodel.Bind", s, project, func(a, b T) bool { return a == b }, property)
}

// BindFunc is Bind for projections that are not comparable. A nil equal
// uses reflect.DeepEqual.
func BindFunc[M, T any](h Host, s store.Store[M], project func(M) T, equal func(a, b T) bool, property string) (T, error) {
	return bindDistinct(h, "viewmodel.BindFunc", s, project, equal, property)
}

func bindDistinct[M, T any](h Host, op string, s store.Store[M], project func(M) T, equal func(a, b T) bool, property string) (T, error) {
	b := h.viewModel()
	_, _, err := b.bindOnce(op, property, reflect.TypeFor[T](), func() (reactive.Disposable, any) {
		seed := project(s.Model())
		values := reactive.DistinctFrom(reactive.Map(s.Changes(), project), seed, equal)
		return subscribeProperty(b, values, property), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return project(s.Model()), nil
}

// BindOnChange is Bind with change detection on key(model) instead of on the
// returned projection. Use it when the projection is expensive or has no
// useful equality.
//
// When the first subscription for property is created and the store
// implements [store.Primer], the store re-emits its current model once.
// Other subscribers of the store see that tick; property itself does not
// signal for it because the key is unchanged.
func BindOnChange[M any, K comparable, T any](h Host, s store.Store[M], key func(M) K, project func(M) T, property string) (T, error) {
	b := h.viewModel()
	_, created, err := b.bindOnce("viewmodel.BindOnChange", property, reflect.TypeFor[T](), func() (reactive.Disposable, any) {
		values := reactive.DistinctBy(s.Changes(), key(s.Model()), key)
		return subscribeProperty(b, values, property), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if created {
		if p, ok := s.(store.Primer); ok {
			p.Reemit()
		}
	}
	return project(s.Model()), nil
}

// BindSourceList projects src into a read-only list that follows it. The
// first call for property opens the pipeline; later calls return the same
// list. A nil mapFn converts each item to U, and fails up front when T is
// not assignable to U.
//
// List updates are applied on the view-model's scheduler.
func BindSourceList[T, U any](h Host, src *collections.SourceList[T], mapFn func(T) U, property string) (*collections.ReadOnlyList[U], error) {
	const op = "viewmodel.BindSourceList"
	b := h.viewModel()
	if mapFn == nil {
		conv, err := converter[T, U](op)
		if err != nil {
			return nil, err
		}
		mapFn = conv
	}
	proj, _, err := b.bindOnce(op, property, reflect.TypeFor[*collections.ReadOnlyList[U]](), func() (reactive.Disposable, any) {
		list, sub := collections.BindList(collections.TransformList(src.Connect(), mapFn), b.Scheduler())
		return sub, list
	})
	if err != nil {
		return nil, err
	}
	return proj.(*collections.ReadOnlyList[U]), nil
}

// BindSourceCache projects src into a read-only list that follows it. A nil
// sortBy keeps insertion order; otherwise items are ordered by sortBy and
// ties keep insertion order. mapFn behaves as in BindSourceList.
func BindSourceCache[K comparable, V, U any](h Host, src *collections.SourceCache[K, V], mapFn func(V) U, sortBy func(a, b U) int, property string) (*collections.ReadOnlyList[U], error) {
	const op = "viewmodel.BindSourceCache"
	b := h.viewModel()
	if mapFn == nil {
		conv, err := converter[V, U](op)
		if err != nil {
			return nil, err
		}
		mapFn = conv
	}
	proj, _, err := b.bindOnce(op, property, reflect.TypeFor[*collections.ReadOnlyList[U]](), func() (reactive.Disposable, any) {
		list, sub := collections.BindCache(collections.TransformCache(src.Connect(), mapFn), sortBy, b.Scheduler())
		return sub, list
	})
	if err != nil {
		return nil, err
	}
	return proj.(*collections.ReadOnlyList[U]), nil
}

// Subscribe registers handler on obs and ties the subscription to the
// view-model's lifetime. Every call creates a new subscription. handler runs
// on whatever goroutine obs emits on.
func Subscribe[T any](h Host, obs reactive.Observable[T], handler func(T)) error {
	b := h.viewModel()
	if b.IsDisposed() {
		return &errors.DisposedError{Op: "viewmodel.Subscribe"}
	}
	return b.AddDisposable(obs.Subscribe(handler))
}

// MustBind is like Bind but panics on error.
func MustBind[M any, T comparable](h Host, s store.Store[M], project func(M) T, property string) T {
	v, err := Bind(h, s, project, property)
	if err != nil {
		panic(err)
	}
	return v
}

// MustBindOnChange is like BindOnChange but panics on error.
func MustBindOnChange[M any, K comparable, T any](h Host, s store.Store[M], key func(M) K, project func(M) T, property string) T {
	v, err := BindOnChange(h, s, key, project, property)
	if err != nil {
		panic(err)
	}
	return v
}

// MustBindSourceList is like BindSourceList but panics on error.
func MustBindSourceList[T, U any](h Host, src *collections.SourceList[T], mapFn func(T) U, property string) *collections.ReadOnlyList[U] {
	l, err := BindSourceList(h, src, mapFn, property)
	if err != nil {
		panic(err)
	}
	return l
}

// MustBindSourceCache is like BindSourceCache but panics on error.
func MustBindSourceCache[K comparable, V, U any](h Host, src *collections.SourceCache[K, V], mapFn func(V) U, sortBy func(a, b U) int, property string) *collections.ReadOnlyList[U] {
	l, err := BindSourceCache(h, src, mapFn, sortBy, property)
	if err != nil {
		panic(err)
	}
	return l
}

// subscribeProperty raises property on b's scheduler for every value of obs.
// Signals still queued when b is disposed are dropped.
func subscribeProperty[T any](b *Base, obs reactive.Observable[T], property string) reactive.Disposable {
	return reactive.ObserveOn(obs, b.Scheduler()).Subscribe(func(T) {
		b.RaisePropertyChanged(property)
	})
}

// converter returns a func converting T to U, or an error if T values are
// not assignable to U.
func converter[T, U any](op string) (func(T) U, error) {
	from, to := reflect.TypeFor[T](), reflect.TypeFor[U]()
	if !from.AssignableTo(to) {
		return nil, &errors.TypeMismatchError{Op: op, Want: to.String(), Got: from.String()}
	}
	return func(v T) U {
		if u, ok := any(v).(U); ok {
			return u
		}
		// Named and unnamed types with the same underlying type.
		rv := reflect.ValueOf(&v).Elem()
		if rv.Kind() == reflect.Interface && rv.IsNil() {
			var zero U
			return zero
		}
		u, _ := rv.Convert(to).Interface().(U)
		return u
	}, nil
}
