package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/linkmesh-ai/linkmesh/pkg/register"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.JobStore = NewJobStore(provider)
	})
}

// JobStore 处理 lm_job 表的操作
type JobStore struct {
	CommonFields
}

func NewJobStore(provider SqlProviderAchieve) *JobStore {
	repo := &JobStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_JOB)
	repo.SetAllColumns("id", "site_id", "mode", "status", "batch_size", "max_retries",
		"total_items", "processed_items", "failed_items", "error", "created_at", "updated_at")
	return repo
}

func (s *JobStore) Create(ctx context.Context, data types.Job) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "site_id", "mode", "status", "batch_size", "max_retries",
			"total_items", "processed_items", "failed_items", "error", "created_at", "updated_at").
		Values(data.ID, data.SiteID, data.Mode, data.Status, data.BatchSize, data.MaxRetries,
			data.TotalItems, data.ProcessedItems, data.FailedItems, data.Error, data.CreatedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *JobStore) Get(ctx context.Context, id string) (*types.Job, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Job
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateSnapshot 单条语句写入全部可变字段，保证状态读取的一致性
func (s *JobStore) UpdateSnapshot(ctx context.Context, data types.Job) error {
	query := sq.Update(s.GetTable()).
		Set("status", data.Status).
		Set("total_items", data.TotalItems).
		Set("processed_items", data.ProcessedItems).
		Set("failed_items", data.FailedItems).
		Set("error", data.Error).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"id": data.ID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *JobStore) List(ctx context.Context, siteID string, page, pageSize uint64) ([]types.Job, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("created_at DESC", "id DESC")
	if siteID != "" {
		query = query.Where(sq.Eq{"site_id": siteID})
	}
	if page != types.NO_PAGINATION || pageSize != types.NO_PAGINATION {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.Job
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *JobStore) Total(ctx context.Context, siteID string) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())
	if siteID != "" {
		query = query.Where(sq.Eq{"site_id": siteID})
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}
