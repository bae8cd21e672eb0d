package dispatch

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/go-drift/mvvm/pkg/errors"
)

// DefaultQueueSize is the wake-up buffer used when NewQueue is given a
// non-positive size.
const DefaultQueueSize = 64

// ErrClosed is reported for callbacks scheduled on a closed Queue.
var ErrClosed = stderrors.New("dispatch queue closed")

// Queue is a FIFO Scheduler drained by a single consumer goroutine, which
// plays the role of the UI thread. Schedule is safe to call from any
// goroutine and never blocks on the consumer.
//
// Panics raised by callbacks are reported through errors.ReportPanic and do
// not stop the queue.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	closed  bool
}

// NewQueue creates a Queue. size bounds the wake-up signal buffer only; the
// pending list itself is unbounded.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{wake: make(chan struct{}, size)}
}

// Schedule appends callback to the queue. Callbacks scheduled after Close are
// dropped and reported to the global error handler as ErrClosed.
func (q *Queue) Schedule(callback func()) {
	if callback == nil {
		return
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		errors.Report(&errors.Error{Op: "dispatch.Queue.Schedule", Kind: errors.KindDispatch, Err: ErrClosed})
		return
	}
	q.pending = append(q.pending, callback)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of callbacks waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain runs queued callbacks on the calling goroutine until the queue is
// empty, including callbacks scheduled by callbacks. It returns how many ran.
func (q *Queue) Drain() int {
	n := 0
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return n
		}
		next := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.run(next)
		n++
	}
}

// Run drains the queue on the calling goroutine until ctx is done or the queue
// is closed. The goroutine calling Run becomes the UI thread.
func (q *Queue) Run(ctx context.Context) error {
	for {
		q.Drain()

		q.mu.Lock()
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
		}
	}
}

// Close stops accepting callbacks and wakes Run so it can return once the
// remaining callbacks have run.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) run(callback func()) {
	defer errors.Recover("dispatch.Queue")
	callback()
}
