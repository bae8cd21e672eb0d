package bindtest

import (
	"sync/atomic"
	"testing"

	"github.com/go-drift/mvvm/pkg/dispatch"
	"github.com/go-drift/mvvm/pkg/view"
)

// FakeView is a view with a name and nothing else.
type FakeView struct {
	view.Base
	Name string
}

// FakeFactory creates FakeViews and counts them.
type FakeFactory struct {
	Name    string
	created atomic.Int64
}

// New creates a FakeView. Its signature matches view.Factory.
func (f *FakeFactory) New() view.View {
	f.created.Add(1)
	return &FakeView{Name: f.Name}
}

// Created returns the number of views created so far.
func (f *FakeFactory) Created() int {
	return int(f.created.Load())
}

// UIThread registers a dispatch queue as the UI thread for the duration of
// the test. Callbacks run only when the test calls Drain.
func UIThread(t testing.TB) *dispatch.Queue {
	t.Helper()
	q := dispatch.NewQueue(0)
	dispatch.RegisterDispatch(q.Schedule)
	t.Cleanup(func() {
		dispatch.RegisterDispatch(nil)
		q.Close()
	})
	return q
}
