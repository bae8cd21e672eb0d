package reactive

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Subject is a multi-subscriber broadcast stream. Every subscriber receives
// every value in the order the values were emitted, even when Next is called
// concurrently or from inside a handler: values are queued and delivered by
// whichever goroutine is currently draining.
//
// The zero value is ready to use.
type Subject[T any] struct {
	mu        sync.Mutex
	subs      []*subscriber[T]
	queue     []delivery[T]
	seq       uint64
	draining  bool
	completed bool
}

type subscriber[T any] struct {
	handler func(T)
	since   uint64
	active  atomic.Bool
}

type delivery[T any] struct {
	value  T
	seq    uint64
	target *subscriber[T]
}

// NewSubject creates an empty Subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe registers handler for every value emitted after this call.
func (s *Subject[T]) Subscribe(handler func(T)) Disposable {
	return s.subscribe(handler, nil)
}

// SubscribeQueued registers handler and queues initial as its first value,
// ahead of anything emitted afterwards. The initial value is delivered by the
// next Flush, which lets callers register under their own lock and deliver
// after releasing it.
func (s *Subject[T]) SubscribeQueued(initial T, handler func(T)) Disposable {
	return s.subscribe(handler, &initial)
}

func (s *Subject[T]) subscribe(handler func(T), initial *T) Disposable {
	if handler == nil {
		return Empty()
	}
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return Empty()
	}
	sub := &subscriber[T]{handler: handler, since: s.seq}
	sub.active.Store(true)
	s.subs = append(s.subs, sub)
	if initial != nil {
		s.queue = append(s.queue, delivery[T]{value: *initial, target: sub})
	}
	s.mu.Unlock()

	return DisposableFunc(func() {
		sub.active.Store(false)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(x *subscriber[T]) bool { return x == sub })
	})
}

// Next emits v to every subscriber.
func (s *Subject[T]) Next(v T) {
	s.Enqueue(v)
	s.Flush()
}

// Enqueue queues v without delivering it. Call Flush to deliver.
func (s *Subject[T]) Enqueue(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return
	}
	s.queue = append(s.queue, delivery[T]{value: v, seq: s.seq})
	s.seq++
}

// Flush delivers queued values. If another goroutine (or an outer frame on
// this goroutine) is already draining, Flush returns and leaves delivery to
// it.
func (s *Subject[T]) Flush() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	finished := false
	defer func() {
		if !finished {
			s.mu.Lock()
			s.draining = false
			s.mu.Unlock()
		}
	}()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			finished = true
			s.mu.Unlock()
			return
		}
		d := s.queue[0]
		s.queue[0] = delivery[T]{}
		s.queue = s.queue[1:]

		var targets []*subscriber[T]
		if d.target != nil {
			targets = []*subscriber[T]{d.target}
		} else {
			for _, sub := range s.subs {
				if sub.since <= d.seq {
					targets = append(targets, sub)
				}
			}
		}
		s.mu.Unlock()

		for _, sub := range targets {
			if sub.active.Load() {
				sub.handler(d.value)
			}
		}
	}
}

// Complete drops every subscriber and ignores later values. Values already
// queued are discarded.
func (s *Subject[T]) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return
	}
	s.completed = true
	for _, sub := range s.subs {
		sub.active.Store(false)
	}
	s.subs = nil
	s.queue = nil
}

// SubscriberCount returns the number of live subscriptions.
func (s *Subject[T]) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// IsCompleted reports whether Complete has been called.
func (s *Subject[T]) IsCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}
