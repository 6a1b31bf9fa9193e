package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pgvector/pgvector-go"

	"github.com/linkmesh-ai/linkmesh/pkg/register"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.VectorStore = NewVectorStore(provider)
	})
}

// VectorStore 处理 lm_vectors 表的操作
type VectorStore struct {
	CommonFields
}

func NewVectorStore(provider SqlProviderAchieve) *VectorStore {
	repo := &VectorStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_VECTORS)
	repo.SetAllColumns("content_id", "embedding", "original_length", "created_at", "updated_at")
	return repo
}

func (s *VectorStore) Upsert(ctx context.Context, data types.Vector) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}
	query := sq.Insert(s.GetTable()).
		Columns("content_id", "embedding", "original_length", "created_at", "updated_at").
		Values(data.ContentID, data.Embedding, data.OriginalLength, data.CreatedAt, data.UpdatedAt).
		Suffix("ON CONFLICT (content_id) DO UPDATE SET embedding = EXCLUDED.embedding, original_length = EXCLUDED.original_length, updated_at = EXCLUDED.updated_at")

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *VectorStore) Delete(ctx context.Context, contentID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"content_id": contentID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// Query 余弦相似度检索
// pgvector: <=> 为余弦距离
func (s *VectorStore) Query(ctx context.Context, vectors pgvector.Vector, limit uint64) ([]types.VectorQueryResult, error) {
	cosColumn, vectorArgs, _ := sq.Expr("1 - (embedding <=> ?) as cos", vectors).ToSql()
	query := sq.Select("content_id", cosColumn).From(s.GetTable()).OrderBy("cos DESC").Limit(limit)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	args = append(vectorArgs, args...)

	var res []types.VectorQueryResult
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
