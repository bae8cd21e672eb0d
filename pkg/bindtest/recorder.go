package bindtest

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-drift/mvvm/pkg/reactive"
)

// Notifier is the change-notification surface of a view-model.
type Notifier interface {
	OnPropertyChanged(handler func(property string)) reactive.Disposable
}

// Recorder collects property-changed signals in the order they arrive.
// All methods are safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	names []string
	sub   reactive.Disposable
}

// Record starts recording n's signals. Recording stops when the test ends.
func Record(t testing.TB, n Notifier) *Recorder {
	t.Helper()
	r := &Recorder{}
	r.sub = n.OnPropertyChanged(r.add)
	t.Cleanup(r.Stop)
	return r
}

func (r *Recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

// Names returns the recorded property names.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.names)
}

// Count returns how many signals were recorded for name.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.names {
		if got == name {
			n++
		}
	}
	return n
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = nil
}

// Stop stops recording.
func (r *Recorder) Stop() {
	if r.sub != nil {
		r.sub.Dispose()
	}
}

// RequireNames fails the test unless exactly want was recorded, in order.
func (r *Recorder) RequireNames(t testing.TB, want ...string) {
	t.Helper()
	got := r.Names()
	if len(want) == 0 {
		require.Empty(t, got, "unexpected property-changed signals")
		return
	}
	require.Equal(t, want, got, "property-changed signals")
}
