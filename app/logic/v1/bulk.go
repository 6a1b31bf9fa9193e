package v1

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/linkmesh-ai/linkmesh/app/core"
	"github.com/linkmesh-ai/linkmesh/pkg/errors"
	"github.com/linkmesh-ai/linkmesh/pkg/jobs"
	"github.com/linkmesh-ai/linkmesh/pkg/suggest"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
	"github.com/linkmesh-ai/linkmesh/pkg/utils"
)

type BulkLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewBulkLogic(ctx context.Context, core *core.Core) *BulkLogic {
	return &BulkLogic{
		ctx:  ctx,
		core: core,
	}
}

type SubmitBulkArgs struct {
	SiteID     string
	Items      []types.BulkContentItem
	Mode       types.JobMode
	BatchSize  int
	MaxRetries int
}

// Submit validates and enqueues a bulk job, returning it in its queued
// state. The job runs on its own goroutine; progress is polled via GetJob.
func (l *BulkLogic) Submit(args SubmitBulkArgs) (*types.Job, error) {
	if !args.Mode.Valid() {
		return nil, errors.New("BulkLogic.Submit.mode", "unknown job mode", nil).Code(http.StatusBadRequest)
	}
	if len(args.Items) == 0 {
		return nil, errors.New("BulkLogic.Submit.items", "content_items must not be empty", nil).Code(http.StatusBadRequest)
	}
	if args.BatchSize <= 0 {
		args.BatchSize = types.DEFAULT_BATCH_SIZE
	}
	if args.MaxRetries <= 0 {
		args.MaxRetries = types.DEFAULT_MAX_RETRIES
	}

	now := time.Now().Unix()
	job := types.Job{
		ID:          utils.GenUniqIDStr(),
		SiteID:      args.SiteID,
		Mode:        args.Mode,
		Status:      types.JOB_STATUS_QUEUED,
		BatchSize:   args.BatchSize,
		MaxRetries:  args.MaxRetries,
		TotalItems:  len(args.Items),
		FailedItems: types.FailedItems{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := l.core.Store().JobStore().Create(l.ctx, job); err != nil {
		return nil, errors.New("BulkLogic.Submit.JobStore.Create", "failed to create job", err)
	}

	runner := jobs.NewRunner(l.core.Store().JobStore(), job, args.Items, l.itemFunc(args.SiteID, args.Mode))
	// 任务生命周期独立于提交请求
	l.core.Jobs().Start(context.Background(), runner)

	return &job, nil
}

// itemFunc dispatches the per-item work for the job mode. Store faults are
// fatal for the whole job; bad items only fail themselves.
func (l *BulkLogic) itemFunc(siteID string, mode types.JobMode) jobs.ItemFunc {
	return func(ctx context.Context, bulkItem types.BulkContentItem) error {
		now := time.Now().Unix()
		item := types.ContentItem{
			ID:         bulkItem.ID,
			SiteID:     siteID,
			Title:      bulkItem.Title,
			URL:        bulkItem.URL,
			RawContent: bulkItem.Content,
			IngestedAt: now,
			UpdatedAt:  now,
		}

		extraction, err := l.core.Analyzer().Extract(&item)
		if err != nil {
			l.core.Metrics().JobItemInc(string(mode), "failed")
			return err
		}

		switch mode {
		case types.JOB_MODE_BUILD_KNOWLEDGE:
			if err := l.core.Knowledge().Upsert(ctx, item, extraction.Entities, extraction.Topics); err != nil {
				l.core.Metrics().JobItemInc(string(mode), "failed")
				return jobs.Fatal(err)
			}
		case types.JOB_MODE_GENERATE_SUGGESTIONS:
			suggestions, err := l.core.Suggest().Suggest(ctx, &suggest.Source{
				Item:       item,
				Entities:   extraction.Entities,
				Topics:     extraction.Topics,
				Paragraphs: extraction.Paragraphs,
			}, 0, 0)
			if err != nil {
				l.core.Metrics().JobItemInc(string(mode), "failed")
				return classifySuggestError(err)
			}
			if err := l.persistJobSuggestions(ctx, item.ID, suggestions); err != nil {
				l.core.Metrics().JobItemInc(string(mode), "failed")
				return jobs.Fatal(err)
			}
		}

		l.core.Metrics().JobItemInc(string(mode), "ok")
		return nil
	}
}

// classifySuggestError decides how a suggestion failure affects the job.
// Timeouts are retried per item; everything else from the suggest path is a
// knowledge store read fault or an unready base, both of which abort the job.
func classifySuggestError(err error) error {
	if err == suggest.ErrNotReady {
		// 知识库未达到阈值，整个任务无法继续
		return jobs.Fatal(err)
	}
	if jobs.IsTimeout(err) {
		return jobs.Transient(err)
	}
	return jobs.Fatal(err)
}

func (l *BulkLogic) persistJobSuggestions(ctx context.Context, sourceID string, suggestions []types.Suggestion) error {
	now := time.Now().Unix()
	for i := range suggestions {
		suggestions[i].ID = utils.GenUniqIDStr()
		suggestions[i].CreatedAt = now
	}

	return l.core.Store().Transaction(ctx, func(ctx context.Context) error {
		if err := l.core.Store().SuggestionStore().DeleteBySource(ctx, sourceID); err != nil {
			return err
		}
		if len(suggestions) == 0 {
			return nil
		}
		return l.core.Store().SuggestionStore().BatchCreate(ctx, suggestions)
	})
}

// GetJob returns the freshest consistent snapshot: the in-flight runner if
// the job is still held here, otherwise the persisted row.
func (l *BulkLogic) GetJob(siteID, jobID string) (*types.Job, error) {
	if runner, ok := l.core.Jobs().Get(jobID); ok {
		snapshot := runner.Snapshot()
		if snapshot.SiteID != siteID {
			return nil, errors.New("BulkLogic.GetJob.site", "job does not belong to this site", nil).Code(http.StatusForbidden)
		}
		return &snapshot, nil
	}

	job, err := l.core.Store().JobStore().Get(l.ctx, jobID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("BulkLogic.GetJob.JobStore.Get", "failed to load job", err)
	}
	if job == nil || err == sql.ErrNoRows {
		return nil, errors.New("BulkLogic.GetJob.JobStore.Get.nil", "job not found", nil).Code(http.StatusNotFound)
	}
	if job.SiteID != siteID {
		return nil, errors.New("BulkLogic.GetJob.site", "job does not belong to this site", nil).Code(http.StatusForbidden)
	}
	return job, nil
}

// StopJob requests a cooperative stop. The batch in flight finishes first.
func (l *BulkLogic) StopJob(siteID, jobID string) (*types.Job, error) {
	job, err := l.GetJob(siteID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return nil, errors.New("BulkLogic.StopJob.terminal", "job already finished", nil).Code(http.StatusConflict)
	}

	if !l.core.Jobs().Stop(jobID) {
		return nil, errors.New("BulkLogic.StopJob.notRunning", "job is not running on this node", nil).Code(http.StatusConflict)
	}
	return job, nil
}

type JobList struct {
	Jobs  []types.Job `json:"jobs"`
	Total int64       `json:"total"`
}

func (l *BulkLogic) ListJobs(siteID string, page, pageSize uint64) (*JobList, error) {
	list, err := l.core.Store().JobStore().List(l.ctx, siteID, page, pageSize)
	if err != nil {
		return nil, errors.New("BulkLogic.ListJobs.JobStore.List", "failed to list jobs", err)
	}

	total, err := l.core.Store().JobStore().Total(l.ctx, siteID)
	if err != nil {
		return nil, errors.New("BulkLogic.ListJobs.JobStore.Total", "failed to list jobs", err)
	}

	// 正在运行的任务以内存快照为准
	for i := range list {
		if runner, ok := l.core.Jobs().Get(list[i].ID); ok {
			list[i] = runner.Snapshot()
		}
	}

	return &JobList{Jobs: list, Total: total}, nil
}
