package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmesh-ai/linkmesh/app/store"
	"github.com/linkmesh-ai/linkmesh/app/store/memstore"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

func testJob(id string, batchSize, maxRetries int) types.Job {
	return types.Job{
		ID:         id,
		SiteID:     "site-1",
		Mode:       types.JOB_MODE_BUILD_KNOWLEDGE,
		Status:     types.JOB_STATUS_QUEUED,
		BatchSize:  batchSize,
		MaxRetries: maxRetries,
		CreatedAt:  time.Now().Unix(),
		UpdatedAt:  time.Now().Unix(),
	}
}

func testItems(n int) []types.BulkContentItem {
	items := make([]types.BulkContentItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, types.BulkContentItem{
			ID:      fmt.Sprintf("item-%d", i),
			Title:   fmt.Sprintf("Item %d", i),
			Content: "some content",
		})
	}
	return items
}

func createJob(t *testing.T, s store.Store, job types.Job) {
	t.Helper()
	require.NoError(t, s.JobStore().Create(context.Background(), job))
}

func TestRunnerRetriesTransientThenCompletes(t *testing.T) {
	s := memstore.New()
	job := testJob("job-1", 3, 3)
	createJob(t, s, job)

	failures := 0
	fn := func(ctx context.Context, item types.BulkContentItem) error {
		// item-4 fails twice before succeeding, inside its retry budget
		if item.ID == "item-4" && failures < 2 {
			failures++
			return Transient(errors.New("upstream timeout"))
		}
		return nil
	}

	runner := NewRunner(s.JobStore(), job, testItems(10), fn)
	runner.Run(context.Background())

	snapshot := runner.Snapshot()
	assert.Equal(t, types.JOB_STATUS_COMPLETED, snapshot.Status)
	assert.Equal(t, 10, snapshot.ProcessedItems)
	assert.Empty(t, snapshot.FailedItems)
	assert.Equal(t, 2, failures)

	stored, err := s.JobStore().Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, types.JOB_STATUS_COMPLETED, stored.Status)
	// total_items is set by the runner, so the persisted snapshot must
	// carry it for stored progress to be meaningful
	assert.Equal(t, 10, stored.TotalItems)
	assert.Equal(t, 10, stored.ProcessedItems)
	assert.InDelta(t, 1.0, stored.Progress(), 1e-9)
}

func TestRunnerStopsAtBatchBoundary(t *testing.T) {
	s := memstore.New()
	job := testJob("job-2", 2, 0)
	createJob(t, s, job)

	var runner *Runner
	handled := 0
	fn := func(ctx context.Context, item types.BulkContentItem) error {
		handled++
		// stop requested during the second batch of five
		if handled == 4 {
			runner.Stop()
		}
		return nil
	}

	runner = NewRunner(s.JobStore(), job, testItems(10), fn)
	runner.Run(context.Background())

	snapshot := runner.Snapshot()
	assert.Equal(t, types.JOB_STATUS_STOPPED, snapshot.Status)
	// the batch in flight finished, nothing after it ran
	assert.GreaterOrEqual(t, snapshot.ProcessedItems, 4)
	assert.Less(t, snapshot.ProcessedItems, 10)
	assert.Equal(t, 4, handled)
}

func TestRunnerFatalFreezesProgress(t *testing.T) {
	s := memstore.New()
	job := testJob("job-3", 3, 2)
	createJob(t, s, job)

	fn := func(ctx context.Context, item types.BulkContentItem) error {
		if item.ID == "item-5" {
			return Fatal(errors.New("knowledge store unreachable"))
		}
		return nil
	}

	runner := NewRunner(s.JobStore(), job, testItems(10), fn)
	runner.Run(context.Background())

	snapshot := runner.Snapshot()
	assert.Equal(t, types.JOB_STATUS_ERROR, snapshot.Status)
	assert.Equal(t, "knowledge store unreachable", snapshot.Error)
	// frozen at the last committed batch boundary, not mid-batch
	assert.Equal(t, 3, snapshot.ProcessedItems)

	stored, err := s.JobStore().Get(context.Background(), "job-3")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.ProcessedItems)
	assert.Equal(t, types.JOB_STATUS_ERROR, stored.Status)
}

func TestRunnerRecordsExhaustedRetries(t *testing.T) {
	s := memstore.New()
	job := testJob("job-4", 5, 1)
	createJob(t, s, job)

	fn := func(ctx context.Context, item types.BulkContentItem) error {
		if item.ID == "item-2" {
			return Transient(errors.New("still flaky"))
		}
		if item.ID == "item-3" {
			return errors.New("unparseable content")
		}
		return nil
	}

	runner := NewRunner(s.JobStore(), job, testItems(5), fn)
	runner.Run(context.Background())

	snapshot := runner.Snapshot()
	assert.Equal(t, types.JOB_STATUS_COMPLETED, snapshot.Status)
	assert.Equal(t, 5, snapshot.ProcessedItems)
	require.Len(t, snapshot.FailedItems, 2)
	assert.Equal(t, "item-2", snapshot.FailedItems[0].ItemID)
	assert.Equal(t, "still flaky", snapshot.FailedItems[0].Reason)
	assert.Equal(t, "item-3", snapshot.FailedItems[1].ItemID)
}

func TestRegistryDuplicateStartIsNoop(t *testing.T) {
	s := memstore.New()
	job := testJob("job-5", 2, 0)
	createJob(t, s, job)

	fn := func(ctx context.Context, item types.BulkContentItem) error { return nil }
	registry := NewRegistry()

	first := NewRunner(s.JobStore(), job, testItems(4), fn)
	second := NewRunner(s.JobStore(), job, testItems(4), fn)

	assert.True(t, registry.Start(context.Background(), first))
	assert.False(t, registry.Start(context.Background(), second))

	select {
	case <-first.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not finish")
	}

	got, ok := registry.Get("job-5")
	require.True(t, ok)
	assert.Same(t, first, got)

	assert.Equal(t, 1, registry.Retire())
	_, ok = registry.Get("job-5")
	assert.False(t, ok)
}
