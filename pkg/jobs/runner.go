// Package jobs drives batched, cancellable bulk runs over content items.
// A runner owns exactly one job; progress is committed at batch boundaries
// so status polls never observe a half-written snapshot.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/linkmesh-ai/linkmesh/app/store"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

// ItemFunc handles one content item. Wrap the returned error with
// Transient to request a retry, or with Fatal to abort the whole job.
// Any other non-nil error records the item as failed and moves on.
type ItemFunc func(ctx context.Context, item types.BulkContentItem) error

type Runner struct {
	store store.JobStore
	fn    ItemFunc
	items []types.BulkContentItem

	mu   sync.Mutex
	job  types.Job
	stop atomic.Bool
	done chan struct{}
}

func NewRunner(jobStore store.JobStore, job types.Job, items []types.BulkContentItem, fn ItemFunc) *Runner {
	if job.BatchSize <= 0 {
		job.BatchSize = types.DEFAULT_BATCH_SIZE
	}
	if job.MaxRetries < 0 {
		job.MaxRetries = 0
	}
	job.TotalItems = len(items)
	if job.FailedItems == nil {
		job.FailedItems = types.FailedItems{}
	}
	return &Runner{
		store: jobStore,
		fn:    fn,
		items: items,
		job:   job,
		done:  make(chan struct{}),
	}
}

// Snapshot returns a consistent copy of the job state.
func (r *Runner) Snapshot() types.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	job := r.job
	job.FailedItems = make(types.FailedItems, len(r.job.FailedItems))
	copy(job.FailedItems, r.job.FailedItems)
	return job
}

// Stop requests a graceful stop. The runner honors it at the next batch
// boundary; the batch in flight always finishes.
func (r *Runner) Stop() {
	r.stop.Store(true)
}

// Done is closed once the job reaches a terminal state.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Run executes the job to a terminal state. Call it once, usually on its
// own goroutine.
func (r *Runner) Run(ctx context.Context) {
	r.transition(ctx, types.JOB_STATUS_PROCESSING, "")

	batchSize := r.job.BatchSize
	for start := 0; start < len(r.items); start += batchSize {
		if r.stop.Load() {
			r.finish(ctx, types.JOB_STATUS_STOPPED, "")
			return
		}
		if err := ctx.Err(); err != nil {
			r.finish(ctx, types.JOB_STATUS_STOPPED, "")
			return
		}

		end := start + batchSize
		if end > len(r.items) {
			end = len(r.items)
		}

		var processed int
		var failed types.FailedItems
		for _, item := range r.items[start:end] {
			err := r.runItem(ctx, item)
			if IsFatal(err) {
				// progress stays at the last committed batch boundary
				r.finish(ctx, types.JOB_STATUS_ERROR, err.Error())
				return
			}
			if err != nil {
				failed = append(failed, types.FailedItem{ItemID: item.ID, Reason: err.Error()})
			}
			processed++
		}
		r.commitBatch(ctx, processed, failed)
	}

	r.finish(ctx, types.JOB_STATUS_COMPLETED, "")
}

// runItem retries transient failures against the item's own retry budget.
func (r *Runner) runItem(ctx context.Context, item types.BulkContentItem) error {
	var err error
	for attempt := 0; attempt <= r.job.MaxRetries; attempt++ {
		err = r.fn(ctx, item)
		if err == nil || !IsTransient(err) {
			return err
		}
	}
	return err
}

func (r *Runner) commitBatch(ctx context.Context, processed int, failed types.FailedItems) {
	r.mu.Lock()
	r.job.ProcessedItems += processed
	r.job.FailedItems = append(r.job.FailedItems, failed...)
	r.job.UpdatedAt = time.Now().Unix()
	snapshot := r.job
	r.mu.Unlock()

	r.persist(ctx, snapshot)
}

func (r *Runner) transition(ctx context.Context, status types.JobStatus, errMsg string) {
	r.mu.Lock()
	r.job.Status = status
	r.job.Error = errMsg
	r.job.UpdatedAt = time.Now().Unix()
	snapshot := r.job
	r.mu.Unlock()

	r.persist(ctx, snapshot)
}

func (r *Runner) finish(ctx context.Context, status types.JobStatus, errMsg string) {
	r.transition(ctx, status, errMsg)
	close(r.done)
}

func (r *Runner) persist(ctx context.Context, snapshot types.Job) {
	if err := r.store.UpdateSnapshot(ctx, snapshot); err != nil {
		slog.Error("failed to persist job snapshot",
			slog.String("job_id", snapshot.ID),
			slog.String("status", string(snapshot.Status)),
			slog.String("error", err.Error()))
	}
}
