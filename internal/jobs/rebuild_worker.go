package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/brightpath-ai/tutorflow/internal/service"
)

// Rebuilder rebuilds the curriculum index from a document.
type Rebuilder interface {
	Rebuild(ctx context.Context, req service.RebuildRequest) (*service.RebuildResult, error)
}

// RebuildQueue is an in-memory FIFO of pending rebuild requests. Rebuilds are
// coalesced per poll: only the newest queued request matters, since each
// rebuild replaces the whole index.
type RebuildQueue struct {
	mu      sync.Mutex
	pending []service.RebuildRequest
}

func NewRebuildQueue() *RebuildQueue {
	return &RebuildQueue{}
}

// Enqueue adds a rebuild request. Returns the queue depth after the add.
func (q *RebuildQueue) Enqueue(req service.RebuildRequest) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, req)
	return len(q.pending)
}

// drain removes all queued requests and returns the newest one.
func (q *RebuildQueue) drain() (service.RebuildRequest, int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.pending)
	if n == 0 {
		return service.RebuildRequest{}, 0, false
	}
	latest := q.pending[n-1]
	q.pending = nil
	return latest, n, true
}

// RebuildWorker processes queued index rebuilds one at a time, keeping slow
// embedding work off the request path.
type RebuildWorker struct {
	queue     *RebuildQueue
	rebuilder Rebuilder
}

// NewRebuildWorker creates a new RebuildWorker instance
func NewRebuildWorker(queue *RebuildQueue, rebuilder Rebuilder) *RebuildWorker {
	return &RebuildWorker{
		queue:     queue,
		rebuilder: rebuilder,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *RebuildWorker) ProcessJobs(ctx context.Context) error {
	req, skipped, ok := w.queue.drain()
	if !ok {
		return nil
	}

	if skipped > 1 {
		log.Printf("Coalescing %d queued rebuilds into one", skipped)
	}

	result, err := w.rebuilder.Rebuild(ctx, req)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	log.Printf("Rebuild completed: %d chunks, dimension %d", result.ChunkCount, result.Dimension)
	return nil
}
