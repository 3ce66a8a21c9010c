// Package flush implements the deferred commit list and fixed-point flush
// loop described by spec §5 and §9: "translate to a work queue that is
// drained repeatedly until empty, with each entity deciding per-call
// whether to defer (needs-upstream-data-not-yet-ready) or execute."
//
// The drain loop itself mirrors engine/scene/scene.go's PrepareCompute:
// work for one round is submitted to a bounded worker.DynamicWorkerPool and
// a sync.WaitGroup provides the per-round barrier, since the pool's Wait
// semantics are built for idle shutdown, not per-round synchronization.
package flush

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/usdscene/primcache"
)

// Entry is one item on the deferred commit list: an object (or a volume
// waiting on its referenced field) that decides per-call whether it still
// needs upstream data. Flush(t) returns deferred=true to be re-queued for
// the next round, or an error to drop it and report failure.
type Entry interface {
	Flush(t primcache.Timecode) (deferred bool, err error)
}

// Queue is the device-wide deferred commit list (spec §5: "commit may be
// deferred... a device-wide flush then drives the writer to materialize
// each object"). Entries of one round are handed to the worker pool in
// FIFO order, but the pool runs them concurrently, so the Flush calls of
// one round complete in no defined order; entries that stay deferred keep
// their relative order. Volume-style entries that stay deferred are re-run
// on the next round until the queue reaches a fixed point: no entry changed
// state ("flushed" vs "still deferred") in the entire round.
type Queue struct {
	mu      sync.Mutex
	pending []Entry
	pool    worker.DynamicWorkerPool
}

// NewQueue constructs a Queue backed by a worker pool of the given size.
// queueDepth and idleTimeout mirror scene.go's NewDynamicWorkerPool(workers,
// queueDepth, idleTimeout) call; 0/0 selects the same defaults scene.go
// uses (256, 1s).
func NewQueue(workers, queueDepth int, idleTimeout time.Duration) *Queue {
	if queueDepth <= 0 {
		queueDepth = 256
	}
	if idleTimeout <= 0 {
		idleTimeout = time.Second
	}
	return &Queue{pool: worker.NewDynamicWorkerPool(workers, queueDepth, idleTimeout)}
}

// Enqueue appends an entry to the end of the pending list (FIFO).
func (q *Queue) Enqueue(e Entry) {
	q.mu.Lock()
	q.pending = append(q.pending, e)
	q.mu.Unlock()
}

// Len reports the number of entries still awaiting a flush.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// roundResult pairs a submitted entry with the outcome of its Flush call.
type roundResult struct {
	entry    Entry
	deferred bool
	err      error
}

// Run drains the queue at timecode t, round by round, until either the
// queue empties or a full round defers every remaining entry with none
// newly resolved (the fixed point spec §9 calls for: "re-run until no new
// work is queued"). It returns the first error encountered from any
// entry's Flush, after finishing that round, but does not abort other
// entries already submitted in the same round.
func (q *Queue) Run(t primcache.Timecode) error {
	var firstErr error
	for {
		q.mu.Lock()
		round := q.pending
		q.pending = nil
		q.mu.Unlock()

		if len(round) == 0 {
			return firstErr
		}

		results := make([]roundResult, len(round))
		var wg sync.WaitGroup
		for i, e := range round {
			wg.Add(1)
			idx, ent := i, e
			q.pool.SubmitTask(worker.Task{
				ID: idx,
				Do: func() (any, error) {
					defer wg.Done()
					deferred, err := ent.Flush(t)
					results[idx] = roundResult{entry: ent, deferred: deferred, err: err}
					return nil, nil
				},
			})
		}
		wg.Wait()

		var stillPending []Entry
		for _, r := range results {
			if r.err != nil && firstErr == nil {
				firstErr = r.err
				continue
			}
			if r.deferred {
				stillPending = append(stillPending, r.entry)
			}
		}

		if len(stillPending) == len(round) {
			// Nothing resolved this round: fixed point reached. Re-queue
			// for the next external Run call (e.g. the next frame) rather
			// than spinning forever on an entry that may never resolve
			// within this flush.
			q.mu.Lock()
			q.pending = append(stillPending, q.pending...)
			q.mu.Unlock()
			return firstErr
		}

		q.mu.Lock()
		q.pending = append(stillPending, q.pending...)
		q.mu.Unlock()
	}
}
