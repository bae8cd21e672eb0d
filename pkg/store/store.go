// Package store defines the contract the binding engine consumes from an
// immutable-state store, plus a small in-memory store for tests and simple
// applications.
//
// Models are values. A store replaces its model on every accepted update and
// emits the new snapshot on its change stream; nothing mutates a model in
// place.
package store

import (
	"sync"

	"github.com/go-drift/mvvm/pkg/reactive"
)

// Store exposes the current model snapshot and a stream of later snapshots.
// Changes emits on every accepted update and may emit on any goroutine.
type Store[M any] interface {
	Model() M
	Changes() reactive.Observable[M]
}

// Primer is implemented by stores that can re-emit their current model on
// demand.
type Primer interface {
	Reemit()
}

// Memory is an in-memory Store.
type Memory[M any] struct {
	mu      sync.RWMutex
	model   M
	changes *reactive.Subject[M]
}

// NewMemory creates a Memory store holding initial.
func NewMemory[M any](initial M) *Memory[M] {
	return &Memory[M]{
		model:   initial,
		changes: reactive.NewSubject[M](),
	}
}

// Model returns the current snapshot.
func (s *Memory[M]) Model() M {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Changes returns the stream of accepted snapshots.
func (s *Memory[M]) Changes() reactive.Observable[M] {
	return s.changes
}

// Set replaces the model and emits it.
func (s *Memory[M]) Set(model M) {
	s.mu.Lock()
	s.model = model
	s.changes.Enqueue(model)
	s.mu.Unlock()
	s.changes.Flush()
}

// Update replaces the model with update(current) and emits the result.
func (s *Memory[M]) Update(update func(M) M) {
	s.mu.Lock()
	s.model = update(s.model)
	s.changes.Enqueue(s.model)
	s.mu.Unlock()
	s.changes.Flush()
}

// Reemit emits the current model again without changing it.
func (s *Memory[M]) Reemit() {
	s.mu.Lock()
	s.changes.Enqueue(s.model)
	s.mu.Unlock()
	s.changes.Flush()
}

// Close completes the change stream. Later updates still change Model but
// are no longer emitted.
func (s *Memory[M]) Close() {
	s.changes.Complete()
}

// Program is a Memory store driven by messages: every Dispatch applies an
// update function to the current model.
type Program[M, Msg any] struct {
	*Memory[M]
	update func(M, Msg) M
}

// NewProgram creates a Program holding initial.
func NewProgram[M, Msg any](initial M, update func(M, Msg) M) *Program[M, Msg] {
	return &Program[M, Msg]{Memory: NewMemory(initial), update: update}
}

// Dispatch applies msg to the current model and emits the result.
func (p *Program[M, Msg]) Dispatch(msg Msg) {
	p.Memory.Update(func(m M) M { return p.update(m, msg) })
}
