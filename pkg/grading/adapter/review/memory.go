// Package review implements the review sink: the queue a workflow lands in
// when the grading decision requires human adjudication.
package review

import (
	"context"
	"sync"

	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

// InMemoryQueue is the default review sink for local runs and tests. It
// holds snapshots in arrival order and never persists them.
type InMemoryQueue struct {
	mu      sync.Mutex
	pending []port.ReviewSnapshot
}

// NewInMemoryQueue creates a new InMemoryQueue.
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{}
}

// Enqueue appends the snapshot to the pending list.
func (q *InMemoryQueue) Enqueue(ctx context.Context, snapshot port.ReviewSnapshot) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, snapshot)
	logger.Infof("InMemoryQueue: workflow %s enqueued for review (%d pending)", snapshot.WorkflowID, len(q.pending))
	return nil
}

// Pending returns a copy of the queued snapshots in arrival order.
func (q *InMemoryQueue) Pending() []port.ReviewSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]port.ReviewSnapshot(nil), q.pending...)
}

var _ port.ReviewSink = (*InMemoryQueue)(nil)
