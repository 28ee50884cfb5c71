package directpay

import "sync"

// GoExecutor runs every function on its own goroutine. It is the default
// background executor, giving each delivery attempt an isolated context.
type GoExecutor struct{}

// Execute starts fn on a new goroutine.
func (GoExecutor) Execute(fn func()) {
	go fn()
}

// SerialQueue is an Executor that runs functions one at a time, in submission
// order, on a single long-lived goroutine. Functions submitted to it never
// overlap, which is what makes it usable as a home executor: callbacks
// observe each other's effects without further locking.
type SerialQueue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// NewSerialQueue starts the queue's goroutine.
func NewSerialQueue() *SerialQueue {
	q := &SerialQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// Execute enqueues fn without blocking; the queue is unbounded. Functions
// submitted after Close are discarded.
func (q *SerialQueue) Execute(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
	q.signal()
}

// Close stops the queue once everything already submitted has run. It
// returns after the queue's goroutine has exited and is safe to call more
// than once.
func (q *SerialQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
	<-q.done
}

func (q *SerialQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *SerialQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		closed := q.closed
		q.mu.Unlock()

		for _, fn := range batch {
			fn()
		}
		if len(batch) > 0 {
			// More work may have arrived while the batch ran.
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}
