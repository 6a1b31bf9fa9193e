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
		provider.stores.ContentStore = NewContentStore(provider)
	})
}

// ContentStore 处理 lm_content 表的操作
type ContentStore struct {
	CommonFields
}

func NewContentStore(provider SqlProviderAchieve) *ContentStore {
	repo := &ContentStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CONTENT)
	repo.SetAllColumns("id", "site_id", "title", "url", "raw_content", "hash", "ingested_at", "updated_at")
	return repo
}

func (s *ContentStore) Create(ctx context.Context, data types.ContentItem) error {
	if data.IngestedAt == 0 {
		data.IngestedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.IngestedAt
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "site_id", "title", "url", "raw_content", "hash", "ingested_at", "updated_at").
		Values(data.ID, data.SiteID, data.Title, data.URL, data.RawContent, data.Hash, data.IngestedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ContentStore) Get(ctx context.Context, id string) (*types.ContentItem, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.ContentItem
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *ContentStore) ListByIDs(ctx context.Context, ids []string) ([]types.ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": ids})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.ContentItem
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// Update 重新摄取时整行替换，ingested_at 保持首次入库时间
func (s *ContentStore) Update(ctx context.Context, data types.ContentItem) error {
	query := sq.Update(s.GetTable()).
		Set("site_id", data.SiteID).
		Set("title", data.Title).
		Set("url", data.URL).
		Set("raw_content", data.RawContent).
		Set("hash", data.Hash).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"id": data.ID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *ContentStore) Delete(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// ListOldest 按首次入库时间升序返回最早的记录，容量淘汰用。
// 重新入库只刷新 updated_at，不影响淘汰顺序。
func (s *ContentStore) ListOldest(ctx context.Context, limit uint64) ([]types.ContentItem, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).OrderBy("ingested_at ASC", "id ASC").Limit(limit)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.ContentItem
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ContentStore) Total(ctx context.Context) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable())

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
