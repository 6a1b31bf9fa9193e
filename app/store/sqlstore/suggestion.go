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
		provider.stores.SuggestionStore = NewSuggestionStore(provider)
	})
}

// SuggestionStore 处理 lm_suggestion 表的操作
type SuggestionStore struct {
	CommonFields
}

func NewSuggestionStore(provider SqlProviderAchieve) *SuggestionStore {
	repo := &SuggestionStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_SUGGESTION)
	repo.SetAllColumns("id", "source_content_id", "anchor_text", "target_content_id", "target_url",
		"confidence", "context", "paragraph_index", "applied", "created_at")
	return repo
}

func (s *SuggestionStore) BatchCreate(ctx context.Context, datas []types.Suggestion) error {
	if len(datas) == 0 {
		return nil
	}
	query := sq.Insert(s.GetTable()).
		Columns("id", "source_content_id", "anchor_text", "target_content_id", "target_url",
			"confidence", "context", "paragraph_index", "applied", "created_at")

	for _, data := range datas {
		if data.CreatedAt == 0 {
			data.CreatedAt = time.Now().Unix()
		}
		query = query.Values(data.ID, data.SourceContentID, data.AnchorText, data.TargetContentID, data.TargetURL,
			data.Confidence, data.Context, data.ParagraphIndex, data.Applied, data.CreatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *SuggestionStore) Get(ctx context.Context, id string) (*types.Suggestion, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Suggestion
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *SuggestionStore) ListBySource(ctx context.Context, sourceContentID string) ([]types.Suggestion, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"source_content_id": sourceContentID}).
		OrderBy("confidence DESC", "paragraph_index ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.Suggestion
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SuggestionStore) MarkApplied(ctx context.Context, id string) error {
	query := sq.Update(s.GetTable()).Set("applied", true).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// AppliedContentIDs 返回被已应用建议引用的内容ID，这些内容不可被淘汰
func (s *SuggestionStore) AppliedContentIDs(ctx context.Context) ([]string, error) {
	queryString := "SELECT DISTINCT content_id FROM (" +
		"SELECT source_content_id AS content_id FROM " + s.GetTable() + " WHERE applied = true" +
		" UNION " +
		"SELECT target_content_id AS content_id FROM " + s.GetTable() + " WHERE applied = true" +
		") AS pinned"

	var res []string
	if err := s.GetReplica(ctx).Select(&res, queryString); err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteBySource 重新分析时替换同一来源的建议
func (s *SuggestionStore) DeleteBySource(ctx context.Context, sourceContentID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"source_content_id": sourceContentID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *SuggestionStore) DeleteByContent(ctx context.Context, contentID string) error {
	query := sq.Delete(s.GetTable()).
		Where(sq.Or{sq.Eq{"source_content_id": contentID}, sq.Eq{"target_content_id": contentID}})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
