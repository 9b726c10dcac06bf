package runner

import (
	"context"
	"sync"

	"github.com/aretw0/dsg/pkg/domain"
)

// Queue is an unbounded FIFO of commands with a blocking Pop.
// Push never blocks, so a slow consumer cannot stall the receiver.
type Queue struct {
	mu     sync.Mutex
	items  []domain.Command
	closed bool
	ready  chan struct{}
	done   chan struct{}
}

// NewQueue creates an empty, open queue.
func NewQueue() *Queue {
	return &Queue{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Push appends a command. It fails with domain.ErrConnectionClosed once the
// queue is closed.
func (q *Queue) Push(cmd domain.Command) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrConnectionClosed
	}
	q.items = append(q.items, cmd)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return nil
}

// Pop removes the oldest command, blocking until one is available.
// Commands pushed before Close are still returned; after that Pop fails with
// domain.ErrConnectionClosed.
func (q *Queue) Pop(ctx context.Context) (domain.Command, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			cmd := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return cmd, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return nil, domain.ErrConnectionClosed
		}

		select {
		case <-q.ready:
		case <-q.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len is the number of queued commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close wakes every blocked Pop. It is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}
