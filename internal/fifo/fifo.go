// Package fifo implements the bounded, blocking order backlog between
// the generator and the dispatcher (spec §4.2). It is a direct
// translation of original_source/burger_system.c's ColaFIFO: a ring
// buffer guarded by one mutex and two condition variables.
package fifo

import (
	"sync"

	"industrial-4.0-demo/internal/types"
)

// FIFO is a bounded multi-producer/multi-consumer ring buffer of
// orders. Enqueue blocks while full; TryDequeue never blocks.
type FIFO struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	ring []*types.Order
	head int
	tail int
	size int

	closed bool
}

// New creates a FIFO with the given fixed capacity (MAX_QUEUE).
func New(capacity int) *FIFO {
	if capacity <= 0 {
		capacity = 1
	}
	f := &FIFO{ring: make([]*types.Order, capacity)}
	f.notEmpty = sync.NewCond(&f.mu)
	f.notFull = sync.NewCond(&f.mu)
	return f
}

// Cap returns MAX_QUEUE.
func (f *FIFO) Cap() int {
	return len(f.ring)
}

// Len returns the current queue size.
func (f *FIFO) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.size
}

// Enqueue blocks while the FIFO is full, then appends the order and
// signals a waiting consumer. It is the generator's sole blocking
// call and is the system's backpressure signal (spec §4.3/§5). It
// returns false without enqueuing if the FIFO has been closed for
// shutdown while the caller was waiting.
func (f *FIFO) Enqueue(o *types.Order) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for f.size == len(f.ring) && !f.closed {
		f.notFull.Wait()
	}
	if f.closed {
		return false
	}

	f.ring[f.tail] = o
	f.tail = (f.tail + 1) % len(f.ring)
	f.size++
	f.notEmpty.Signal()
	return true
}

// TryDequeue returns the head order immediately, or (nil, false) if
// the FIFO is empty. It never blocks — the dispatcher polls instead
// (spec §4.2/§5) so it stays responsive to shutdown.
func (f *FIFO) TryDequeue() (*types.Order, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.size == 0 {
		return nil, false
	}

	o := f.ring[f.head]
	f.ring[f.head] = nil
	f.head = (f.head + 1) % len(f.ring)
	f.size--
	f.notFull.Signal()
	return o, true
}

// Requeue re-appends an order the dispatcher failed to place, to the
// tail (spec §4.4). It shares Enqueue's blocking-while-full semantics
// — the FIFO never silently drops an order.
func (f *FIFO) Requeue(o *types.Order) bool {
	return f.Enqueue(o)
}

// DrainOnShutdown broadcasts both conditions to release every waiter
// (spec §4.2's drain_on_shutdown / §4.8's shutdown broadcast).
// Subsequent Enqueue calls return false instead of blocking.
func (f *FIFO) DrainOnShutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.notEmpty.Broadcast()
	f.notFull.Broadcast()
}

// Snapshot returns head/tail/size for invariant checks and the
// operator state feed, without exposing the ring itself.
func (f *FIFO) Snapshot() (head, tail, size, capacity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.head, f.tail, f.size, len(f.ring)
}
