// Package reactive provides the push-stream primitives shared by the store,
// the reactive collections and the view-model binding engine.
//
// An [Observable] delivers values to handlers until the returned
// [Disposable] is disposed. Operators wrap an upstream Observable and keep
// per-subscription state, so a single operator chain can be subscribed any
// number of times.
//
//	counts := reactive.Map(store.Changes(), func(m Model) int { return m.Count })
//	sub := reactive.DistinctFrom(counts, 0, nil).Subscribe(func(n int) {
//	    fmt.Println("count is now", n)
//	})
//	defer sub.Dispose()
package reactive

import (
	"reflect"
	"sync"

	"github.com/go-drift/mvvm/pkg/dispatch"
)

// Observable is a stream of values.
type Observable[T any] interface {
	// Subscribe registers handler and returns the subscription.
	Subscribe(handler func(T)) Disposable
}

// ObservableFunc adapts a subscribe function into an Observable.
type ObservableFunc[T any] func(handler func(T)) Disposable

// Subscribe calls f(handler).
func (f ObservableFunc[T]) Subscribe(handler func(T)) Disposable { return f(handler) }

// Map transforms every value with fn.
func Map[T, U any](src Observable[T], fn func(T) U) Observable[U] {
	return ObservableFunc[U](func(handler func(U)) Disposable {
		return src.Subscribe(func(v T) { handler(fn(v)) })
	})
}

// Filter forwards the values for which keep returns true.
func Filter[T any](src Observable[T], keep func(T) bool) Observable[T] {
	return ObservableFunc[T](func(handler func(T)) Disposable {
		return src.Subscribe(func(v T) {
			if keep(v) {
				handler(v)
			}
		})
	})
}

// DistinctFrom forwards a value only when it differs from the previously
// forwarded one. The comparison starts from seed, so a first value equal to
// seed is dropped. A nil equal uses reflect.DeepEqual.
func DistinctFrom[T any](src Observable[T], seed T, equal func(a, b T) bool) Observable[T] {
	if equal == nil {
		equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	return ObservableFunc[T](func(handler func(T)) Disposable {
		var mu sync.Mutex
		last := seed
		return src.Subscribe(func(v T) {
			mu.Lock()
			if equal(last, v) {
				mu.Unlock()
				return
			}
			last = v
			mu.Unlock()
			handler(v)
		})
	})
}

// DistinctBy forwards a value only when key(value) differs from the key of
// the previously forwarded value, starting from seed.
func DistinctBy[T any, K comparable](src Observable[T], seed K, key func(T) K) Observable[T] {
	return ObservableFunc[T](func(handler func(T)) Disposable {
		var mu sync.Mutex
		last := seed
		return src.Subscribe(func(v T) {
			k := key(v)
			mu.Lock()
			if k == last {
				mu.Unlock()
				return
			}
			last = k
			mu.Unlock()
			handler(v)
		})
	})
}

// ObserveOn delivers values through scheduler. Values still queued on the
// scheduler when the subscription is disposed are dropped.
func ObserveOn[T any](src Observable[T], scheduler dispatch.Scheduler) Observable[T] {
	if scheduler == nil {
		scheduler = dispatch.Immediate
	}
	return ObservableFunc[T](func(handler func(T)) Disposable {
		var mu sync.Mutex
		active := true
		upstream := src.Subscribe(func(v T) {
			scheduler.Schedule(func() {
				mu.Lock()
				ok := active
				mu.Unlock()
				if ok {
					handler(v)
				}
			})
		})
		return DisposableFunc(func() {
			mu.Lock()
			active = false
			mu.Unlock()
			upstream.Dispose()
		})
	})
}
