package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/linkmesh-ai/linkmesh/pkg/register"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.TopicStore = NewTopicStore(provider)
	})
}

// TopicStore 处理 lm_topic 表的操作
type TopicStore struct {
	CommonFields
}

func NewTopicStore(provider SqlProviderAchieve) *TopicStore {
	repo := &TopicStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_TOPIC)
	repo.SetAllColumns("id", "content_id", "value", "kind", "weight")
	return repo
}

func (s *TopicStore) BatchCreate(ctx context.Context, datas []types.Topic) error {
	if len(datas) == 0 {
		return nil
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "content_id", "value", "kind", "weight")

	for _, data := range datas {
		query = query.Values(data.ID, data.ContentID, data.Value, data.Kind, data.Weight)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *TopicStore) DeleteByContent(ctx context.Context, contentID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"content_id": contentID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *TopicStore) ListByContent(ctx context.Context, contentID string) ([]types.Topic, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"content_id": contentID}).
		OrderBy("weight DESC", "value ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.Topic
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *TopicStore) MatchCounts(ctx context.Context, values []string, excludeID string) ([]types.MatchCount, error) {
	if len(values) == 0 {
		return nil, nil
	}
	query := sq.Select("content_id", "COUNT(DISTINCT value) AS matches").
		From(s.GetTable()).
		Where(sq.Eq{"value": values}).
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

func (s *TopicStore) Total(ctx context.Context) (int64, error) {
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
