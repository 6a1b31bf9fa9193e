package knowledge

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmesh-ai/linkmesh/app/store/memstore"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
	"github.com/linkmesh-ai/linkmesh/pkg/utils"
)

func init() {
	utils.SetupIDWorker(1)
}

func testItem(id string, ingestedAt int64) types.ContentItem {
	return types.ContentItem{
		ID:         id,
		SiteID:     "site-1",
		Title:      "Title " + id,
		URL:        "https://example.com/" + id,
		RawContent: "Content for " + id,
		IngestedAt: ingestedAt,
		UpdatedAt:  ingestedAt,
	}
}

func entity(name string) types.Entity {
	return types.Entity{Type: types.ENTITY_TYPE_GARMENT, CanonicalName: name, Surface: name, Confidence: 0.8}
}

func topic(value string, weight float64) types.Topic {
	return types.Topic{Value: value, Kind: types.TOPIC_KIND_SUB, Weight: weight}
}

func TestReadinessFlipsAtMinimumRequired(t *testing.T) {
	s := memstore.New()
	base := NewBase(s, Config{MinimumRequired: 3, Capacity: 100})
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		id := fmt.Sprintf("c%d", i)
		require.NoError(t, base.Upsert(ctx, testItem(id, int64(i)), []types.Entity{entity("blazer")}, nil))

		stats, err := base.Stats(ctx)
		require.NoError(t, err)
		assert.False(t, stats.ReadyForAnalysis)
	}

	require.NoError(t, base.Upsert(ctx, testItem("c3", 3), []types.Entity{entity("blazer")}, nil))

	stats, err := base.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.ReadyForAnalysis)
	assert.EqualValues(t, 3, stats.ContentCount)
}

func TestUpsertIdempotentOnUnchangedHash(t *testing.T) {
	s := memstore.New()
	base := NewBase(s, Config{MinimumRequired: 1, Capacity: 100})
	ctx := context.Background()

	item := testItem("c1", 1)
	entities := []types.Entity{entity("blazer"), entity("chinos")}
	topics := []types.Topic{topic("men's style guide", 1.2)}

	require.NoError(t, base.Upsert(ctx, item, entities, topics))

	first, err := s.EntityStore().ListByContent(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, first, 2)

	// same payload again: no rewrite, entity ids unchanged
	require.NoError(t, base.Upsert(ctx, testItem("c1", 1), []types.Entity{entity("blazer"), entity("chinos")}, []types.Topic{topic("men's style guide", 1.2)}))

	second, err := s.EntityStore().ListByContent(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUpsertReplacesOnChange(t *testing.T) {
	s := memstore.New()
	base := NewBase(s, Config{MinimumRequired: 1, Capacity: 100})
	ctx := context.Background()

	require.NoError(t, base.Upsert(ctx, testItem("c1", 1), []types.Entity{entity("blazer")}, nil))
	require.NoError(t, base.Upsert(ctx, testItem("c1", 1), []types.Entity{entity("loafers")}, nil))

	entities, err := s.EntityStore().ListByContent(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "loafers", entities[0].CanonicalName)

	total, err := s.ContentStore().Total(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCandidateRanking(t *testing.T) {
	s := memstore.New()
	base := NewBase(s, Config{MinimumRequired: 1, Capacity: 100})
	ctx := context.Background()

	// c2 shares two entities, c3 one entity, c4 nothing
	require.NoError(t, base.Upsert(ctx, testItem("c2", 10), []types.Entity{entity("blazer"), entity("chinos")}, nil))
	require.NoError(t, base.Upsert(ctx, testItem("c3", 20), []types.Entity{entity("blazer")}, nil))
	require.NoError(t, base.Upsert(ctx, testItem("c4", 30), []types.Entity{entity("parka")}, nil))

	source := []types.Entity{entity("blazer"), entity("chinos")}
	candidates, err := base.CandidatesFor(ctx, "c1", source, nil, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "c2", candidates[0].ContentID)
	assert.InDelta(t, 0.2, candidates[0].Weight, 1e-9)
	assert.Equal(t, "c3", candidates[1].ContentID)
	assert.InDelta(t, 0.1, candidates[1].Weight, 1e-9)

	// the source item itself is never a candidate
	require.NoError(t, base.Upsert(ctx, testItem("c1", 40), source, nil))
	candidates, err = base.CandidatesFor(ctx, "c1", source, nil, 10)
	require.NoError(t, err)
	for _, c := range candidates {
		assert.NotEqual(t, "c1", c.ContentID)
	}
}

func TestCandidateTieBreakByRecency(t *testing.T) {
	s := memstore.New()
	base := NewBase(s, Config{MinimumRequired: 1, Capacity: 100})
	ctx := context.Background()

	require.NoError(t, base.Upsert(ctx, testItem("old", 10), []types.Entity{entity("blazer")}, nil))
	require.NoError(t, base.Upsert(ctx, testItem("new", 20), []types.Entity{entity("blazer")}, nil))

	candidates, err := base.CandidatesFor(ctx, "src", []types.Entity{entity("blazer")}, nil, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "new", candidates[0].ContentID)
	assert.Equal(t, "old", candidates[1].ContentID)
}

func TestEvictionOldestFirstWithPinning(t *testing.T) {
	s := memstore.New()
	base := NewBase(s, Config{MinimumRequired: 1, Capacity: 3})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		item := testItem(fmt.Sprintf("c%d", i), int64(i))
		item.UpdatedAt = int64(i)
		require.NoError(t, base.Upsert(ctx, item, []types.Entity{entity("blazer")}, nil))
	}

	// pin c1 through an applied suggestion
	require.NoError(t, s.SuggestionStore().BatchCreate(ctx, []types.Suggestion{{
		ID:              "s1",
		SourceContentID: "c5",
		TargetContentID: "c1",
		Applied:         true,
	}}))

	item := testItem("c4", 4)
	item.UpdatedAt = 4
	require.NoError(t, base.Upsert(ctx, item, []types.Entity{entity("blazer")}, nil))

	total, err := s.ContentStore().Total(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	// c1 is pinned, c2 is the oldest unpinned item and must be gone
	_, err = s.ContentStore().Get(ctx, "c1")
	assert.NoError(t, err)
	_, err = s.ContentStore().Get(ctx, "c2")
	assert.Error(t, err)
	_, err = s.ContentStore().Get(ctx, "c4")
	assert.NoError(t, err)
}

func TestEvictionRanksByFirstIngestion(t *testing.T) {
	s := memstore.New()
	base := NewBase(s, Config{MinimumRequired: 1, Capacity: 3})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, base.Upsert(ctx, testItem(fmt.Sprintf("c%d", i), int64(i)), []types.Entity{entity("blazer")}, nil))
	}

	// re-ingesting c1 with new content refreshes updated_at but must not
	// rejuvenate it against eviction
	refreshed := testItem("c1", 1)
	refreshed.RawContent = "rewritten content"
	require.NoError(t, base.Upsert(ctx, refreshed, []types.Entity{entity("loafers")}, nil))

	require.NoError(t, base.Upsert(ctx, testItem("c4", 4), []types.Entity{entity("blazer")}, nil))

	_, err := s.ContentStore().Get(ctx, "c1")
	assert.Error(t, err)
	_, err = s.ContentStore().Get(ctx, "c2")
	assert.NoError(t, err)
	_, err = s.ContentStore().Get(ctx, "c4")
	assert.NoError(t, err)
}

func TestRelationshipRecompute(t *testing.T) {
	s := memstore.New()
	base := NewBase(s, Config{MinimumRequired: 1, Capacity: 100})
	ctx := context.Background()

	require.NoError(t, base.Upsert(ctx, testItem("a", 1), []types.Entity{entity("blazer")}, []types.Topic{topic("men's style guide", 1.0)}))
	require.NoError(t, base.Upsert(ctx, testItem("b", 2), []types.Entity{entity("blazer")}, []types.Topic{topic("men's style guide", 1.0)}))

	rels, err := s.RelationshipStore().ListByContent(ctx, "a")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	// one shared entity (0.1) plus one shared topic (0.15)
	assert.InDelta(t, 0.25, rels[0].Weight, 1e-9)

	// re-ingesting b without the shared topic lowers the edge
	require.NoError(t, base.Upsert(ctx, testItem("b", 2), []types.Entity{entity("blazer")}, nil))
	rels, err = s.RelationshipStore().ListByContent(ctx, "a")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.InDelta(t, 0.1, rels[0].Weight, 1e-9)
}

func TestHysteresisPolicy(t *testing.T) {
	p := HysteresisPolicy{Trigger: 0.9, Target: 0.8}

	assert.EqualValues(t, 0, p.Plan(900, 1000))
	assert.EqualValues(t, 101, p.Plan(901, 1000))
	assert.EqualValues(t, 200, p.Plan(1000, 1000))
}
