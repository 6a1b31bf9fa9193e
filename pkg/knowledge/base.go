// Package knowledge maintains the capacity-bounded index of ingested
// content, its entities/topics and the derived relationship graph.
package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/linkmesh-ai/linkmesh/app/store"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
	"github.com/linkmesh-ai/linkmesh/pkg/utils"
)

const (
	// matched entity contributes 0.1 each capped at 5, topic 0.15 capped
	// at 4, total clamped to 1.0
	entityMatchWeight = 0.1
	entityMatchCap    = 5
	topicMatchWeight  = 0.15
	topicMatchCap     = 4

	minRelationshipWeight = 0.1
)

type Config struct {
	MinimumRequired int64 `toml:"minimum_required"`
	Capacity        int64 `toml:"capacity"`
}

func (c *Config) FromENVOrDefault() {
	if c.MinimumRequired <= 0 {
		c.MinimumRequired = types.DEFAULT_MINIMUM_REQUIRED
	}
	if c.Capacity <= 0 {
		c.Capacity = types.DEFAULT_CAPACITY
	}
}

// Base is the knowledge store facade. Writes are serialized per content id,
// reads run concurrently against the underlying store.
type Base struct {
	store  store.Store
	cfg    Config
	policy EvictionPolicy

	locks cmap.ConcurrentMap[string, *sync.Mutex]
}

type Option func(*Base)

// WithEvictionPolicy overrides the default evict-down-to-capacity policy.
func WithEvictionPolicy(policy EvictionPolicy) Option {
	return func(b *Base) {
		b.policy = policy
	}
}

func NewBase(s store.Store, cfg Config, opts ...Option) *Base {
	cfg.FromENVOrDefault()
	b := &Base{
		store:  s,
		cfg:    cfg,
		policy: OldestFirstPolicy{},
		locks:  cmap.New[*sync.Mutex](),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Base) lockFor(contentID string) *sync.Mutex {
	b.locks.SetIfAbsent(contentID, &sync.Mutex{})
	mu, _ := b.locks.Get(contentID)
	return mu
}

// ContentHash fingerprints the analyzable payload. Re-ingesting content
// whose hash is unchanged is a no-op.
func ContentHash(title string, entities []types.Entity, topics []types.Topic) string {
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Type+":"+e.CanonicalName)
	}
	sort.Strings(names)

	values := make([]string, 0, len(topics))
	for _, t := range topics {
		values = append(values, t.Value)
	}
	sort.Strings(values)

	return utils.MD5(title + "|" + strings.Join(names, ",") + "|" + strings.Join(values, ","))
}

// Upsert stores a content item with its extraction, replacing any prior
// record for the same id, then recomputes relationships touching that id
// and runs capacity eviction. Last write wins.
func (b *Base) Upsert(ctx context.Context, item types.ContentItem, entities []types.Entity, topics []types.Topic) error {
	mu := b.lockFor(item.ID)
	mu.Lock()
	defer mu.Unlock()

	item.Hash = ContentHash(item.Title, entities, topics)

	existing, err := b.store.ContentStore().Get(ctx, item.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if existing != nil && existing.Hash == item.Hash {
		return nil
	}

	err = b.store.Transaction(ctx, func(ctx context.Context) error {
		if existing == nil {
			if err := b.store.ContentStore().Create(ctx, item); err != nil {
				return err
			}
		} else {
			if err := b.store.ContentStore().Update(ctx, item); err != nil {
				return err
			}
		}

		if err := b.store.EntityStore().DeleteByContent(ctx, item.ID); err != nil {
			return err
		}
		if err := b.store.TopicStore().DeleteByContent(ctx, item.ID); err != nil {
			return err
		}

		for i := range entities {
			entities[i].ID = utils.GenUniqIDStr()
			entities[i].ContentID = item.ID
		}
		for i := range topics {
			topics[i].ID = utils.GenUniqIDStr()
			topics[i].ContentID = item.ID
		}
		if err := b.store.EntityStore().BatchCreate(ctx, entities); err != nil {
			return err
		}
		return b.store.TopicStore().BatchCreate(ctx, topics)
	})
	if err != nil {
		return err
	}

	if err := b.recomputeRelationships(ctx, item.ID, entities, topics); err != nil {
		return err
	}

	_, err = b.EvictIfOverCapacity(ctx)
	return err
}

// recomputeRelationships rebuilds the weighted edges touching contentID
// from shared entity names and topic values.
func (b *Base) recomputeRelationships(ctx context.Context, contentID string, entities []types.Entity, topics []types.Topic) error {
	if err := b.store.RelationshipStore().DeleteByContent(ctx, contentID); err != nil {
		return err
	}

	weights, err := b.matchWeights(ctx, contentID, entityNames(entities), topicValues(topics))
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	for otherID, weight := range weights {
		if weight < minRelationshipWeight {
			continue
		}
		err := b.store.RelationshipStore().Upsert(ctx, types.Relationship{
			ContentIDA: contentID,
			ContentIDB: otherID,
			Weight:     weight,
			UpdatedAt:  now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *Base) matchWeights(ctx context.Context, excludeID string, names, values []string) (map[string]float64, error) {
	weights := make(map[string]float64)

	entityMatches, err := b.store.EntityStore().MatchCounts(ctx, names, excludeID)
	if err != nil {
		return nil, err
	}
	for _, m := range entityMatches {
		matches := m.Matches
		if matches > entityMatchCap {
			matches = entityMatchCap
		}
		weights[m.ContentID] += entityMatchWeight * float64(matches)
	}

	topicMatches, err := b.store.TopicStore().MatchCounts(ctx, values, excludeID)
	if err != nil {
		return nil, err
	}
	for _, m := range topicMatches {
		matches := m.Matches
		if matches > topicMatchCap {
			matches = topicMatchCap
		}
		weights[m.ContentID] += topicMatchWeight * float64(matches)
	}

	for id, weight := range weights {
		if weight > 1 {
			weights[id] = 1
		}
	}
	return weights, nil
}

// CandidatesFor returns stored items sharing at least one entity or topic
// with the given extraction, ranked by match weight descending, ties broken
// by most recent ingested_at.
func (b *Base) CandidatesFor(ctx context.Context, contentID string, entities []types.Entity, topics []types.Topic, topK int) ([]types.Candidate, error) {
	weights, err := b.matchWeights(ctx, contentID, entityNames(entities), topicValues(topics))
	if err != nil {
		return nil, err
	}
	if len(weights) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	items, err := b.store.ContentStore().ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]types.Candidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, types.Candidate{
			ContentID:  item.ID,
			Title:      item.Title,
			URL:        item.URL,
			Weight:     weights[item.ID],
			IngestedAt: item.IngestedAt,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Weight != candidates[j].Weight {
			return candidates[i].Weight > candidates[j].Weight
		}
		if candidates[i].IngestedAt != candidates[j].IngestedAt {
			return candidates[i].IngestedAt > candidates[j].IngestedAt
		}
		return candidates[i].ContentID < candidates[j].ContentID
	})
	if topK > 0 && len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// TopicsOf returns the stored topic values of a content item.
func (b *Base) TopicsOf(ctx context.Context, contentID string) ([]types.Topic, error) {
	return b.store.TopicStore().ListByContent(ctx, contentID)
}

// EntitiesOf returns the stored entities of a content item.
func (b *Base) EntitiesOf(ctx context.Context, contentID string) ([]types.Entity, error) {
	return b.store.EntityStore().ListByContent(ctx, contentID)
}

func (b *Base) Stats(ctx context.Context) (*types.KnowledgeStats, error) {
	contentCount, err := b.store.ContentStore().Total(ctx)
	if err != nil {
		return nil, err
	}
	entityCount, err := b.store.EntityStore().Total(ctx)
	if err != nil {
		return nil, err
	}
	topicCount, err := b.store.TopicStore().Total(ctx)
	if err != nil {
		return nil, err
	}
	relationshipCount, err := b.store.RelationshipStore().Total(ctx)
	if err != nil {
		return nil, err
	}

	return &types.KnowledgeStats{
		ContentCount:      contentCount,
		EntityCount:       entityCount,
		TopicCount:        topicCount,
		RelationshipCount: relationshipCount,
		ReadyForAnalysis:  contentCount >= b.cfg.MinimumRequired,
		MinimumRequired:   b.cfg.MinimumRequired,
		Capacity:          b.cfg.Capacity,
	}, nil
}

// Ready reports whether enough content is indexed for suggestion runs.
func (b *Base) Ready(ctx context.Context) (bool, error) {
	contentCount, err := b.store.ContentStore().Total(ctx)
	if err != nil {
		return false, err
	}
	return contentCount >= b.cfg.MinimumRequired, nil
}

func entityNames(entities []types.Entity) []string {
	seen := make(map[string]bool, len(entities))
	var names []string
	for _, e := range entities {
		if !seen[e.CanonicalName] {
			seen[e.CanonicalName] = true
			names = append(names, e.CanonicalName)
		}
	}
	return names
}

func topicValues(topics []types.Topic) []string {
	seen := make(map[string]bool, len(topics))
	var values []string
	for _, t := range topics {
		if !seen[t.Value] {
			seen[t.Value] = true
			values = append(values, t.Value)
		}
	}
	return values
}
