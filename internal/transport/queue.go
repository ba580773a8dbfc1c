package transport

import (
	"context"
	"sync"
)

// Queue serializes focus-stealing sends. Every enqueued operation runs after
// the previous one finishes, in submission order, system-wide; at most one is
// in flight at any time. Non-focus transports never touch the queue.
type Queue struct {
	mu   sync.Mutex
	tail chan struct{}
}

func NewQueue() *Queue {
	return &Queue{}
}

// enqueue appends a slot to the chain. wait blocks until every earlier slot
// has released; release opens the slot for the next waiter and must always be
// called exactly after the slot's turn has arrived.
func (q *Queue) enqueue() (wait func(), release func()) {
	q.mu.Lock()
	prev := q.tail
	done := make(chan struct{})
	q.tail = done
	q.mu.Unlock()

	wait = func() {
		if prev != nil {
			<-prev
		}
	}
	var once sync.Once
	release = func() {
		once.Do(func() { close(done) })
	}
	return wait, release
}

// Do runs fn after all previously submitted operations have completed. The
// context only bounds the wait for a turn; once fn starts it runs to
// completion regardless of cancellation. An abandoned slot still releases in
// chain order so later sends are not stalled.
func (q *Queue) Do(ctx context.Context, fn func() error) error {
	if q == nil {
		return fn()
	}
	wait, release := q.enqueue()

	if ctx != nil && ctx.Done() != nil {
		turn := make(chan struct{})
		go func() {
			wait()
			close(turn)
		}()
		select {
		case <-turn:
		case <-ctx.Done():
			go func() {
				<-turn
				release()
			}()
			return ctx.Err()
		}
	} else {
		wait()
	}

	defer release()
	return fn()
}
