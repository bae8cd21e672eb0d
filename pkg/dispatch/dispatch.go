// Package dispatch marshals callbacks onto the UI thread.
//
// Store change streams may emit on any goroutine. Everything UI-facing,
// property-changed signals in particular, must run on the single thread the
// UI framework owns. A [Scheduler] is that seam: the view-model layer hands it
// callbacks and never runs UI work directly.
package dispatch

import "sync"

// Scheduler runs callbacks on the thread it owns.
// Callbacks scheduled from one goroutine run in the order they were scheduled.
type Scheduler interface {
	Schedule(callback func())
}

// SchedulerFunc adapts a function into a Scheduler.
type SchedulerFunc func(callback func())

// Schedule calls f(callback).
func (f SchedulerFunc) Schedule(callback func()) { f(callback) }

// Immediate runs callbacks synchronously on the calling goroutine.
var Immediate Scheduler = SchedulerFunc(func(callback func()) {
	if callback != nil {
		callback()
	}
})

var (
	dispatchMu   sync.RWMutex
	dispatchFunc func(callback func())
)

// RegisterDispatch sets the dispatch function used to schedule callbacks on the UI thread.
// This should be called once by the UI framework during initialization.
// Passing nil unregisters it.
func RegisterDispatch(fn func(callback func())) {
	dispatchMu.Lock()
	dispatchFunc = fn
	dispatchMu.Unlock()
}

// Dispatch schedules a callback to run on the UI thread.
// Returns true if the callback was successfully scheduled, false if no dispatch function
// is registered or the callback is nil.
func Dispatch(callback func()) bool {
	dispatchMu.RLock()
	fn := dispatchFunc
	dispatchMu.RUnlock()
	if fn == nil || callback == nil {
		return false
	}
	fn(callback)
	return true
}

// Default returns the scheduler backed by the registered dispatch function.
// When nothing is registered the callback runs inline.
func Default() Scheduler {
	return defaultScheduler
}

var defaultScheduler Scheduler = SchedulerFunc(func(callback func()) {
	if callback == nil {
		return
	}
	if !Dispatch(callback) {
		callback()
	}
})
