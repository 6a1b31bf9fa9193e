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
		provider.stores.RelationshipStore = NewRelationshipStore(provider)
	})
}

// RelationshipStore 处理 lm_relationship 表的操作。边是无向的，
// 存储时保证 content_id_a < content_id_b。
type RelationshipStore struct {
	CommonFields
}

func NewRelationshipStore(provider SqlProviderAchieve) *RelationshipStore {
	repo := &RelationshipStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_RELATIONSHIP)
	repo.SetAllColumns("content_id_a", "content_id_b", "weight", "updated_at")
	return repo
}

func (s *RelationshipStore) Upsert(ctx context.Context, data types.Relationship) error {
	if data.ContentIDA > data.ContentIDB {
		data.ContentIDA, data.ContentIDB = data.ContentIDB, data.ContentIDA
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns("content_id_a", "content_id_b", "weight", "updated_at").
		Values(data.ContentIDA, data.ContentIDB, data.Weight, data.UpdatedAt).
		Suffix("ON CONFLICT (content_id_a, content_id_b) DO UPDATE SET weight = EXCLUDED.weight, updated_at = EXCLUDED.updated_at")

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *RelationshipStore) DeleteByContent(ctx context.Context, contentID string) error {
	query := sq.Delete(s.GetTable()).
		Where(sq.Or{sq.Eq{"content_id_a": contentID}, sq.Eq{"content_id_b": contentID}})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *RelationshipStore) ListByContent(ctx context.Context, contentID string) ([]types.Relationship, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Or{sq.Eq{"content_id_a": contentID}, sq.Eq{"content_id_b": contentID}}).
		OrderBy("weight DESC", "updated_at DESC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.Relationship
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *RelationshipStore) Total(ctx context.Context) (int64, error) {
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
