package composition

import (
	"github.com/go-drift/mvvm/pkg/errors"
	"github.com/go-drift/mvvm/pkg/view"
)

// Registration says how the view for a view-model type is obtained.
// It is either a Singleton or a Transient.
type Registration interface {
	registration()
}

// Singleton reuses one view instance. The first resolution binds a
// view-model to it; later resolutions return it unchanged.
type Singleton struct {
	View view.View
}

// Transient creates a new view and a new view-model on every resolution.
// The view-model is disposed when the view is detached.
type Transient struct {
	New view.Factory
}

func (Singleton) registration() {}
func (Transient) registration() {}

// Entry pairs a key with its registration.
type Entry struct {
	Key          Key
	Registration Registration
}

// SingletonView registers v as the shared view for VM.
func SingletonView[VM any](v view.View) Entry {
	return Entry{Key: KeyOf[VM](), Registration: Singleton{View: v}}
}

// TransientView registers newView as the view factory for VM.
func TransientView[VM any](newView view.Factory) Entry {
	return Entry{Key: KeyOf[VM](), Registration: Transient{New: newView}}
}

// DuplicatePolicy decides what happens when two entries share a key.
type DuplicatePolicy int

const (
	// RejectDuplicates fails registry construction.
	RejectDuplicates DuplicatePolicy = iota
	// ReplaceDuplicates keeps the last entry.
	ReplaceDuplicates
)

// Registry maps view-model keys to registrations. It is immutable once
// built.
type Registry struct {
	entries map[Key]Registration
}

// NewRegistry builds a Registry from entries. Entries with a nil
// registration, a nil singleton view or a nil transient factory are
// rejected.
func NewRegistry(policy DuplicatePolicy, entries ...Entry) (*Registry, error) {
	const op = "composition.NewRegistry"
	r := &Registry{entries: make(map[Key]Registration, len(entries))}
	for _, e := range entries {
		if err := validEntry(e); err != nil {
			return nil, &errors.Error{Op: op, Kind: errors.KindRegistration, ViewModel: e.Key.String(), Err: err}
		}
		if _, dup := r.entries[e.Key]; dup && policy == RejectDuplicates {
			return nil, &errors.DuplicateViewError{ViewModel: e.Key.String()}
		}
		r.entries[e.Key] = e.Registration
	}
	return r, nil
}

func validEntry(e Entry) error {
	if e.Key.t == nil {
		return errNilKey
	}
	switch reg := e.Registration.(type) {
	case Singleton:
		if reg.View == nil {
			return errNilView
		}
	case Transient:
		if reg.New == nil {
			return errNilFactory
		}
	default:
		return errNilRegistration
	}
	return nil
}

// Lookup returns the registration for k.
func (r *Registry) Lookup(k Key) (Registration, bool) {
	if r == nil {
		return nil, false
	}
	reg, ok := r.entries[k]
	return reg, ok
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
