package suggest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmesh-ai/linkmesh/app/store/memstore"
	"github.com/linkmesh-ai/linkmesh/pkg/knowledge"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
	"github.com/linkmesh-ai/linkmesh/pkg/utils"
)

func init() {
	utils.SetupIDWorker(1)
}

func seededBase(t *testing.T, minimumRequired int64, targets int) (*knowledge.Base, *memstore.MemStore) {
	t.Helper()
	s := memstore.New()
	base := knowledge.NewBase(s, knowledge.Config{MinimumRequired: minimumRequired, Capacity: 1000})

	for i := 1; i <= targets; i++ {
		id := fmt.Sprintf("t%d", i)
		item := types.ContentItem{
			ID:         id,
			Title:      fmt.Sprintf("Oxford Shirt Guide %d", i),
			URL:        "https://example.com/" + id,
			RawContent: "All about the oxford shirt.",
			IngestedAt: int64(i),
			UpdatedAt:  int64(i),
		}
		entities := []types.Entity{{
			Type:          types.ENTITY_TYPE_GARMENT,
			CanonicalName: "oxford shirt",
			Surface:       "oxford shirt",
			Confidence:    0.8,
		}}
		require.NoError(t, base.Upsert(context.Background(), item, entities, nil))
	}
	return base, s
}

func testSource() *Source {
	return &Source{
		Item: types.ContentItem{
			ID:         "src",
			Title:      "Building a Wardrobe",
			URL:        "https://example.com/src",
			RawContent: "Every wardrobe needs an oxford shirt for versatility.\n\nKeep the rest of the rotation simple.",
		},
		Entities: []types.Entity{{
			Type:          types.ENTITY_TYPE_GARMENT,
			CanonicalName: "oxford shirt",
			Surface:       "oxford shirt",
			Confidence:    0.8,
		}},
		Paragraphs: []string{
			"Every wardrobe needs an oxford shirt for versatility.",
			"Keep the rest of the rotation simple.",
		},
	}
}

func TestSuggestNotReady(t *testing.T) {
	base, _ := seededBase(t, 100, 3)
	engine := NewEngine(base, nil, Config{})

	_, err := engine.Suggest(context.Background(), testSource(), 5, 0.1)
	require.ErrorIs(t, err, ErrNotReady)
}

func TestSuggestProperties(t *testing.T) {
	base, _ := seededBase(t, 2, 4)
	engine := NewEngine(base, nil, Config{})
	ctx := context.Background()

	source := testSource()
	minConfidence := 0.05
	suggestions, err := engine.Suggest(ctx, source, 3, minConfidence)
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)
	assert.LessOrEqual(t, len(suggestions), 3)

	seenTargets := make(map[string]bool)
	for i, suggestion := range suggestions {
		assert.NotEqual(t, source.Item.ID, suggestion.TargetContentID)
		assert.False(t, seenTargets[suggestion.TargetContentID])
		seenTargets[suggestion.TargetContentID] = true

		assert.GreaterOrEqual(t, suggestion.Confidence, minConfidence)
		assert.LessOrEqual(t, suggestion.Confidence, 1.0)

		// anchor is verbatim text of the indexed paragraph
		require.Less(t, suggestion.ParagraphIndex, len(source.Paragraphs))
		assert.Contains(t, source.Paragraphs[suggestion.ParagraphIndex], suggestion.AnchorText)

		if i > 0 {
			assert.GreaterOrEqual(t, suggestions[i-1].Confidence, suggestion.Confidence)
		}
	}
}

func TestSuggestIdempotent(t *testing.T) {
	base, _ := seededBase(t, 2, 4)
	engine := NewEngine(base, nil, Config{})
	ctx := context.Background()

	first, err := engine.Suggest(ctx, testSource(), 3, 0.05)
	require.NoError(t, err)
	second, err := engine.Suggest(ctx, testSource(), 3, 0.05)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSuggestMinConfidenceExact(t *testing.T) {
	base, _ := seededBase(t, 2, 4)
	engine := NewEngine(base, nil, Config{})
	ctx := context.Background()

	suggestions, err := engine.Suggest(ctx, testSource(), 5, 0.99)
	require.NoError(t, err)
	for _, suggestion := range suggestions {
		assert.GreaterOrEqual(t, suggestion.Confidence, 0.99)
	}
}

func TestSuggestDropsCandidatesWithoutAnchor(t *testing.T) {
	base, _ := seededBase(t, 2, 3)
	engine := NewEngine(base, nil, Config{})
	ctx := context.Background()

	// the shared entity never appears in the paragraphs, so no verbatim
	// anchor exists and every candidate must be dropped silently
	source := testSource()
	source.Paragraphs = []string{"Nothing relevant appears in this text at all."}
	source.Item.RawContent = source.Paragraphs[0]

	suggestions, err := engine.Suggest(ctx, source, 5, 0.01)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggestSkipsAlreadyLinkedAnchors(t *testing.T) {
	source := testSource()
	linked := strings.Replace(source.Item.RawContent, "oxford shirt", `<a href="/x">oxford shirt</a>`, 1)

	assert.True(t, alreadyLinked(linked, "oxford shirt"))
	assert.False(t, alreadyLinked(source.Item.RawContent, "oxford shirt"))
	assert.True(t, alreadyLinked("see [oxford shirt](https://example.com)", "oxford shirt"))
}

func TestSuggestNeverLinksSelf(t *testing.T) {
	base, s := seededBase(t, 2, 3)
	engine := NewEngine(base, nil, Config{})
	ctx := context.Background()

	// source itself is in the store sharing the same entity
	source := testSource()
	require.NoError(t, base.Upsert(ctx, source.Item, source.Entities, nil))

	suggestions, err := engine.Suggest(ctx, source, 10, 0.01)
	require.NoError(t, err)
	for _, suggestion := range suggestions {
		assert.NotEqual(t, source.Item.ID, suggestion.TargetContentID)
	}

	total, err := s.ContentStore().Total(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
}

func TestRecencyPriors(t *testing.T) {
	priors := recencyPriors([]types.Candidate{
		{ContentID: "a", IngestedAt: 10},
		{ContentID: "b", IngestedAt: 30},
		{ContentID: "c", IngestedAt: 20},
	})
	assert.Equal(t, []float64{0, 1, 0.5}, priors)

	assert.Equal(t, []float64{1}, recencyPriors([]types.Candidate{{ContentID: "only"}}))
}
