package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/linkmesh-ai/linkmesh/pkg/register"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.EntityStore = NewEntityStore(provider)
	})
}

// EntityStore 处理 lm_entity 表的操作
type EntityStore struct {
	CommonFields
}

func NewEntityStore(provider SqlProviderAchieve) *EntityStore {
	repo := &EntityStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_ENTITY)
	repo.SetAllColumns("id", "content_id", "type", "canonical_name", "surface", "paragraph_index", "char_offset", "confidence")
	return repo
}

func (s *EntityStore) BatchCreate(ctx context.Context, datas []types.Entity) error {
	if len(datas) == 0 {
		return nil
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "content_id", "type", "canonical_name", "surface", "paragraph_index", "char_offset", "confidence")

	for _, data := range datas {
		query = query.Values(data.ID, data.ContentID, data.Type, data.CanonicalName, data.Surface, data.ParagraphIndex, data.Offset, data.Confidence)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *EntityStore) DeleteByContent(ctx context.Context, contentID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"content_id": contentID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *EntityStore) ListByContent(ctx context.Context, contentID string) ([]types.Entity, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"content_id": contentID}).
		OrderBy("confidence DESC", "paragraph_index ASC", "canonical_name ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.Entity
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

// MatchCounts 统计每篇内容与给定实体名的重合数量
func (s *EntityStore) MatchCounts(ctx context.Context, names []string, excludeID string) ([]types.MatchCount, error) {
	if len(names) == 0 {
		return nil, nil
	}
	query := sq.Select("content_id", "COUNT(DISTINCT canonical_name) AS matches").
		From(s.GetTable()).
		Where(sq.Eq{"canonical_name": names}).
		GroupBy("content_id")
	if excludeID != "" {
		query = query.Where(sq.NotEq{"content_id": excludeID})
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.MatchCount
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *EntityStore) Total(ctx context.Context) (int64, error) {
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
