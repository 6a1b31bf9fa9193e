package store

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

// ContentStore 处理 lm_content 表的操作
type ContentStore interface {
	Create(ctx context.Context, data types.ContentItem) error
	Get(ctx context.Context, id string) (*types.ContentItem, error)
	ListByIDs(ctx context.Context, ids []string) ([]types.ContentItem, error)
	Update(ctx context.Context, data types.ContentItem) error
	Delete(ctx context.Context, id string) error
	ListOldest(ctx context.Context, limit uint64) ([]types.ContentItem, error)
	Total(ctx context.Context) (int64, error)
}

type EntityStore interface {
	BatchCreate(ctx context.Context, datas []types.Entity) error
	DeleteByContent(ctx context.Context, contentID string) error
	ListByContent(ctx context.Context, contentID string) ([]types.Entity, error)
	// MatchCounts returns, per content id, how many of the given canonical
	// names that content shares. excludeID is left out of the result.
	MatchCounts(ctx context.Context, names []string, excludeID string) ([]types.MatchCount, error)
	Total(ctx context.Context) (int64, error)
}

type TopicStore interface {
	BatchCreate(ctx context.Context, datas []types.Topic) error
	DeleteByContent(ctx context.Context, contentID string) error
	ListByContent(ctx context.Context, contentID string) ([]types.Topic, error)
	MatchCounts(ctx context.Context, values []string, excludeID string) ([]types.MatchCount, error)
	Total(ctx context.Context) (int64, error)
}

type RelationshipStore interface {
	Upsert(ctx context.Context, data types.Relationship) error
	DeleteByContent(ctx context.Context, contentID string) error
	ListByContent(ctx context.Context, contentID string) ([]types.Relationship, error)
	Total(ctx context.Context) (int64, error)
}

type SuggestionStore interface {
	BatchCreate(ctx context.Context, datas []types.Suggestion) error
	Get(ctx context.Context, id string) (*types.Suggestion, error)
	ListBySource(ctx context.Context, sourceContentID string) ([]types.Suggestion, error)
	MarkApplied(ctx context.Context, id string) error
	// AppliedContentIDs returns content ids referenced by an applied
	// suggestion, as source or target. These are pinned against eviction.
	AppliedContentIDs(ctx context.Context) ([]string, error)
	// DeleteBySource removes the suggestions generated for one source item,
	// used to replace them on re-analysis.
	DeleteBySource(ctx context.Context, sourceContentID string) error
	// DeleteByContent removes suggestions referencing the content as source
	// or target, used on eviction.
	DeleteByContent(ctx context.Context, contentID string) error
}

type JobStore interface {
	Create(ctx context.Context, data types.Job) error
	Get(ctx context.Context, id string) (*types.Job, error)
	// UpdateSnapshot persists the whole mutable part of a job in one
	// statement so status reads never observe a half-written pair.
	UpdateSnapshot(ctx context.Context, data types.Job) error
	List(ctx context.Context, siteID string, page, pageSize uint64) ([]types.Job, error)
	Total(ctx context.Context, siteID string) (int64, error)
}

type VectorStore interface {
	Upsert(ctx context.Context, data types.Vector) error
	Delete(ctx context.Context, contentID string) error
	// Query returns content ids ranked by cosine similarity to vectors.
	Query(ctx context.Context, vectors pgvector.Vector, limit uint64) ([]types.VectorQueryResult, error)
}

// Store is the persistence surface the knowledge base, suggestion engine
// and job orchestrator are built on. Backed by Postgres in production and
// by an in-memory implementation for the memory driver and tests.
type Store interface {
	ContentStore() ContentStore
	EntityStore() EntityStore
	TopicStore() TopicStore
	RelationshipStore() RelationshipStore
	SuggestionStore() SuggestionStore
	JobStore() JobStore
	VectorStore() VectorStore

	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	Install() error
}
