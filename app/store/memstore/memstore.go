// Package memstore is an in-memory store.Store used by the memory driver
// and by tests. A single RWMutex guards all tables.
package memstore

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/linkmesh-ai/linkmesh/app/store"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

type MemStore struct {
	mu sync.RWMutex

	contents      map[string]types.ContentItem
	entities      map[string][]types.Entity
	topics        map[string][]types.Topic
	relationships map[relKey]types.Relationship
	suggestions   map[string]types.Suggestion
	jobs          map[string]types.Job
	vectors       map[string]types.Vector
}

type relKey struct {
	a, b string
}

func New() *MemStore {
	return &MemStore{
		contents:      make(map[string]types.ContentItem),
		entities:      make(map[string][]types.Entity),
		topics:        make(map[string][]types.Topic),
		relationships: make(map[relKey]types.Relationship),
		suggestions:   make(map[string]types.Suggestion),
		jobs:          make(map[string]types.Job),
		vectors:       make(map[string]types.Vector),
	}
}

func (m *MemStore) ContentStore() store.ContentStore           { return &contentStore{m} }
func (m *MemStore) EntityStore() store.EntityStore             { return &entityStore{m} }
func (m *MemStore) TopicStore() store.TopicStore               { return &topicStore{m} }
func (m *MemStore) RelationshipStore() store.RelationshipStore { return &relationshipStore{m} }
func (m *MemStore) SuggestionStore() store.SuggestionStore     { return &suggestionStore{m} }
func (m *MemStore) JobStore() store.JobStore                   { return &jobStore{m} }
func (m *MemStore) VectorStore() store.VectorStore             { return &vectorStore{m} }

func (m *MemStore) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *MemStore) Install() error { return nil }

type contentStore struct{ m *MemStore }

func (s *contentStore) Create(ctx context.Context, data types.ContentItem) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if data.IngestedAt == 0 {
		data.IngestedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.IngestedAt
	}
	s.m.contents[data.ID] = data
	return nil
}

func (s *contentStore) Get(ctx context.Context, id string) (*types.ContentItem, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	item, ok := s.m.contents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (s *contentStore) ListByIDs(ctx context.Context, ids []string) ([]types.ContentItem, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var result []types.ContentItem
	for _, id := range ids {
		if item, ok := s.m.contents[id]; ok {
			result = append(result, item)
		}
	}
	return result, nil
}

func (s *contentStore) Update(ctx context.Context, data types.ContentItem) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	prev, ok := s.m.contents[data.ID]
	if !ok {
		return sql.ErrNoRows
	}
	data.IngestedAt = prev.IngestedAt
	data.UpdatedAt = time.Now().Unix()
	s.m.contents[data.ID] = data
	return nil
}

func (s *contentStore) Delete(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.contents, id)
	return nil
}

func (s *contentStore) ListOldest(ctx context.Context, limit uint64) ([]types.ContentItem, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	items := make([]types.ContentItem, 0, len(s.m.contents))
	for _, item := range s.m.contents {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].IngestedAt != items[j].IngestedAt {
			return items[i].IngestedAt < items[j].IngestedAt
		}
		return items[i].ID < items[j].ID
	})
	if uint64(len(items)) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *contentStore) Total(ctx context.Context) (int64, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return int64(len(s.m.contents)), nil
}

type entityStore struct{ m *MemStore }

func (s *entityStore) BatchCreate(ctx context.Context, datas []types.Entity) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, data := range datas {
		s.m.entities[data.ContentID] = append(s.m.entities[data.ContentID], data)
	}
	return nil
}

func (s *entityStore) DeleteByContent(ctx context.Context, contentID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.entities, contentID)
	return nil
}

func (s *entityStore) ListByContent(ctx context.Context, contentID string) ([]types.Entity, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	result := append([]types.Entity{}, s.m.entities[contentID]...)
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Confidence != result[j].Confidence {
			return result[i].Confidence > result[j].Confidence
		}
		if result[i].ParagraphIndex != result[j].ParagraphIndex {
			return result[i].ParagraphIndex < result[j].ParagraphIndex
		}
		return result[i].CanonicalName < result[j].CanonicalName
	})
	return result, nil
}

func (s *entityStore) MatchCounts(ctx context.Context, names []string, excludeID string) ([]types.MatchCount, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	var result []types.MatchCount
	for contentID, entities := range s.m.entities {
		if contentID == excludeID {
			continue
		}
		matched := make(map[string]bool)
		for _, e := range entities {
			if wanted[e.CanonicalName] {
				matched[e.CanonicalName] = true
			}
		}
		if len(matched) > 0 {
			result = append(result, types.MatchCount{ContentID: contentID, Matches: len(matched)})
		}
	}
	return result, nil
}

func (s *entityStore) Total(ctx context.Context) (int64, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var total int64
	for _, entities := range s.m.entities {
		total += int64(len(entities))
	}
	return total, nil
}

type topicStore struct{ m *MemStore }

func (s *topicStore) BatchCreate(ctx context.Context, datas []types.Topic) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, data := range datas {
		s.m.topics[data.ContentID] = append(s.m.topics[data.ContentID], data)
	}
	return nil
}

func (s *topicStore) DeleteByContent(ctx context.Context, contentID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.topics, contentID)
	return nil
}

func (s *topicStore) ListByContent(ctx context.Context, contentID string) ([]types.Topic, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	result := append([]types.Topic{}, s.m.topics[contentID]...)
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Weight != result[j].Weight {
			return result[i].Weight > result[j].Weight
		}
		return result[i].Value < result[j].Value
	})
	return result, nil
}

func (s *topicStore) MatchCounts(ctx context.Context, values []string, excludeID string) ([]types.MatchCount, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	wanted := make(map[string]bool, len(values))
	for _, value := range values {
		wanted[value] = true
	}
	var result []types.MatchCount
	for contentID, topics := range s.m.topics {
		if contentID == excludeID {
			continue
		}
		matched := make(map[string]bool)
		for _, topic := range topics {
			if wanted[topic.Value] {
				matched[topic.Value] = true
			}
		}
		if len(matched) > 0 {
			result = append(result, types.MatchCount{ContentID: contentID, Matches: len(matched)})
		}
	}
	return result, nil
}

func (s *topicStore) Total(ctx context.Context) (int64, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var total int64
	for _, topics := range s.m.topics {
		total += int64(len(topics))
	}
	return total, nil
}

type relationshipStore struct{ m *MemStore }

func (s *relationshipStore) Upsert(ctx context.Context, data types.Relationship) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if data.ContentIDA > data.ContentIDB {
		data.ContentIDA, data.ContentIDB = data.ContentIDB, data.ContentIDA
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = time.Now().Unix()
	}
	s.m.relationships[relKey{data.ContentIDA, data.ContentIDB}] = data
	return nil
}

func (s *relationshipStore) DeleteByContent(ctx context.Context, contentID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for key := range s.m.relationships {
		if key.a == contentID || key.b == contentID {
			delete(s.m.relationships, key)
		}
	}
	return nil
}

func (s *relationshipStore) ListByContent(ctx context.Context, contentID string) ([]types.Relationship, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var result []types.Relationship
	for key, rel := range s.m.relationships {
		if key.a == contentID || key.b == contentID {
			result = append(result, rel)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Weight != result[j].Weight {
			return result[i].Weight > result[j].Weight
		}
		return result[i].UpdatedAt > result[j].UpdatedAt
	})
	return result, nil
}

func (s *relationshipStore) Total(ctx context.Context) (int64, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return int64(len(s.m.relationships)), nil
}

type suggestionStore struct{ m *MemStore }

func (s *suggestionStore) BatchCreate(ctx context.Context, datas []types.Suggestion) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, data := range datas {
		if data.CreatedAt == 0 {
			data.CreatedAt = time.Now().Unix()
		}
		s.m.suggestions[data.ID] = data
	}
	return nil
}

func (s *suggestionStore) Get(ctx context.Context, id string) (*types.Suggestion, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	suggestion, ok := s.m.suggestions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &suggestion, nil
}

func (s *suggestionStore) ListBySource(ctx context.Context, sourceContentID string) ([]types.Suggestion, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var result []types.Suggestion
	for _, suggestion := range s.m.suggestions {
		if suggestion.SourceContentID == sourceContentID {
			result = append(result, suggestion)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Confidence != result[j].Confidence {
			return result[i].Confidence > result[j].Confidence
		}
		return result[i].ParagraphIndex < result[j].ParagraphIndex
	})
	return result, nil
}

func (s *suggestionStore) MarkApplied(ctx context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	suggestion, ok := s.m.suggestions[id]
	if !ok {
		return sql.ErrNoRows
	}
	suggestion.Applied = true
	s.m.suggestions[id] = suggestion
	return nil
}

func (s *suggestionStore) AppliedContentIDs(ctx context.Context) ([]string, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	seen := make(map[string]bool)
	for _, suggestion := range s.m.suggestions {
		if suggestion.Applied {
			seen[suggestion.SourceContentID] = true
			seen[suggestion.TargetContentID] = true
		}
	}
	result := make([]string, 0, len(seen))
	for id := range seen {
		result = append(result, id)
	}
	sort.Strings(result)
	return result, nil
}

func (s *suggestionStore) DeleteBySource(ctx context.Context, sourceContentID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for id, suggestion := range s.m.suggestions {
		if suggestion.SourceContentID == sourceContentID {
			delete(s.m.suggestions, id)
		}
	}
	return nil
}

func (s *suggestionStore) DeleteByContent(ctx context.Context, contentID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for id, suggestion := range s.m.suggestions {
		if suggestion.SourceContentID == contentID || suggestion.TargetContentID == contentID {
			delete(s.m.suggestions, id)
		}
	}
	return nil
}

type jobStore struct{ m *MemStore }

func (s *jobStore) Create(ctx context.Context, data types.Job) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}
	s.m.jobs[data.ID] = data
	return nil
}

func (s *jobStore) Get(ctx context.Context, id string) (*types.Job, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	job, ok := s.m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	job.FailedItems = append(types.FailedItems{}, job.FailedItems...)
	return &job, nil
}

func (s *jobStore) UpdateSnapshot(ctx context.Context, data types.Job) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	job, ok := s.m.jobs[data.ID]
	if !ok {
		return sql.ErrNoRows
	}
	job.Status = data.Status
	job.TotalItems = data.TotalItems
	job.ProcessedItems = data.ProcessedItems
	job.FailedItems = append(types.FailedItems{}, data.FailedItems...)
	job.Error = data.Error
	job.UpdatedAt = time.Now().Unix()
	s.m.jobs[data.ID] = job
	return nil
}

func (s *jobStore) List(ctx context.Context, siteID string, page, pageSize uint64) ([]types.Job, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var result []types.Job
	for _, job := range s.m.jobs {
		if siteID != "" && job.SiteID != siteID {
			continue
		}
		result = append(result, job)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID > result[j].ID
	})
	if page != types.NO_PAGINATION || pageSize != types.NO_PAGINATION {
		from := (page - 1) * pageSize
		if from >= uint64(len(result)) {
			return nil, nil
		}
		to := from + pageSize
		if to > uint64(len(result)) {
			to = uint64(len(result))
		}
		result = result[from:to]
	}
	return result, nil
}

func (s *jobStore) Total(ctx context.Context, siteID string) (int64, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	var total int64
	for _, job := range s.m.jobs {
		if siteID == "" || job.SiteID == siteID {
			total++
		}
	}
	return total, nil
}

type vectorStore struct{ m *MemStore }

func (s *vectorStore) Upsert(ctx context.Context, data types.Vector) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	data.UpdatedAt = time.Now().Unix()
	s.m.vectors[data.ContentID] = data
	return nil
}

func (s *vectorStore) Delete(ctx context.Context, contentID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.vectors, contentID)
	return nil
}

func (s *vectorStore) Query(ctx context.Context, vectors pgvector.Vector, limit uint64) ([]types.VectorQueryResult, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	queried := vectors.Slice()
	var result []types.VectorQueryResult
	for contentID, stored := range s.m.vectors {
		result = append(result, types.VectorQueryResult{
			ContentID: contentID,
			Cos:       cosineSimilarity(queried, stored.Embedding.Slice()),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Cos != result[j].Cos {
			return result[i].Cos > result[j].Cos
		}
		return result[i].ContentID < result[j].ContentID
	})
	if uint64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ store.Store = (*MemStore)(nil)
