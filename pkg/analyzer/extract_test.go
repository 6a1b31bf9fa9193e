package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "html tags removed",
			in:   "<p>The <strong>oxford shirt</strong> endures.</p>",
			want: "The oxford shirt endures.",
		},
		{
			name: "entities decoded",
			in:   "Turnbull &amp; Asser&nbsp;shirts",
			want: "Turnbull & Asser shirts",
		},
		{
			name: "newlines preserved",
			in:   "First paragraph.\n\nSecond paragraph.",
			want: "First paragraph.\n\nSecond paragraph.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkup(tt.in))
		})
	}
}

func TestSplitParagraphs(t *testing.T) {
	paragraphs := SplitParagraphs("one\n\ntwo\nthree\n\n\n")
	assert.Equal(t, []string{"one", "two", "three"}, paragraphs)

	assert.Empty(t, SplitParagraphs("   \n \n"))
}

func TestExtractUnparseable(t *testing.T) {
	a := NewAnalyzer(nil)

	_, err := a.Extract(&types.ContentItem{ID: "c1", RawContent: "<div><span></span></div>"})
	require.ErrorIs(t, err, ErrUnparseable)

	_, err = a.Extract(&types.ContentItem{ID: "c2", RawContent: "   "})
	require.ErrorIs(t, err, ErrUnparseable)
}

func TestExtractNonEnglishReturnsEmpty(t *testing.T) {
	a := NewAnalyzer(nil)

	result, err := a.Extract(&types.ContentItem{
		ID:         "c1",
		Title:      "Руководство по стилю",
		RawContent: "Это подробное руководство по классическому мужскому стилю и гардеробу. Здесь рассматриваются основные принципы подбора одежды.",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Entities)
	assert.NotEmpty(t, result.Paragraphs)
}

func TestExtractEntities(t *testing.T) {
	a := NewAnalyzer(nil)

	item := &types.ContentItem{
		ID:    "c1",
		Title: "How to Style an Oxford Shirt",
		RawContent: "The oxford shirt remains a staple of preppy dressing.\n\n" +
			"Pair it with chinos in khaki or navy blue for a timeless look. Brands like Ralph Lauren built entire collections around it.",
	}

	result, err := a.Extract(item)
	require.NoError(t, err)
	require.NotEmpty(t, result.Entities)
	assert.Len(t, result.Paragraphs, 2)

	byCanonical := make(map[string]types.Entity)
	for _, e := range result.Entities {
		assert.Equal(t, "c1", e.ContentID)
		assert.GreaterOrEqual(t, e.Confidence, 0.0)
		assert.LessOrEqual(t, e.Confidence, 1.0)
		byCanonical[e.CanonicalName] = e
	}

	shirt, ok := byCanonical["oxford shirt"]
	require.True(t, ok)
	assert.Equal(t, types.ENTITY_TYPE_GARMENT, shirt.Type)
	assert.Equal(t, 0, shirt.ParagraphIndex)

	// 最长词优先：navy blue 不应被拆成 navy
	navy, ok := byCanonical["navy blue"]
	require.True(t, ok)
	assert.Equal(t, types.ENTITY_TYPE_COLOR_SEASON, navy.Type)
	assert.Equal(t, 1, navy.ParagraphIndex)

	brand, ok := byCanonical["ralph lauren"]
	require.True(t, ok)
	assert.Equal(t, types.ENTITY_TYPE_BRAND, brand.Type)

	preppy, ok := byCanonical["preppy"]
	require.True(t, ok)
	assert.Equal(t, types.ENTITY_TYPE_STYLE, preppy.Type)
}

func TestExtractDeterministic(t *testing.T) {
	a := NewAnalyzer(nil)
	item := &types.ContentItem{
		ID:         "c1",
		Title:      "Capsule Wardrobe Guide",
		RawContent: "A capsule wardrobe starts with a navy blazer, grey trousers and white oxford shirts.\n\nAdd loafers and a trench coat for autumn.",
	}

	first, err := a.Extract(item)
	require.NoError(t, err)
	second, err := a.Extract(item)
	require.NoError(t, err)

	assert.Equal(t, first.Entities, second.Entities)
	assert.Equal(t, first.Topics, second.Topics)
}

func TestSortEntitiesTieBreaks(t *testing.T) {
	entities := []types.Entity{
		{CanonicalName: "navy", Surface: "navy", ParagraphIndex: 2, Confidence: 0.6},
		{CanonicalName: "tweed", Surface: "tweed", ParagraphIndex: 1, Confidence: 0.6},
		{CanonicalName: "navy blue", Surface: "navy blue", ParagraphIndex: 3, Confidence: 0.6},
		{CanonicalName: "linen", Surface: "linen", ParagraphIndex: 1, Confidence: 0.9},
	}

	sortEntities(entities)

	// highest confidence first, then longer surface, then earlier paragraph,
	// then name
	assert.Equal(t, "linen", entities[0].CanonicalName)
	assert.Equal(t, "navy blue", entities[1].CanonicalName)
	assert.Equal(t, "tweed", entities[2].CanonicalName)
	assert.Equal(t, "navy", entities[3].CanonicalName)
}

func TestExtractTopics(t *testing.T) {
	a := NewAnalyzer(nil)
	item := &types.ContentItem{
		ID:         "c1",
		Title:      "Men's Style Guide",
		RawContent: "Every men's style guide should begin with wardrobe essentials for men.\n\nAn oxford shirt and penny loafers cover most occasions.",
	}

	result, err := a.Extract(item)
	require.NoError(t, err)
	require.NotEmpty(t, result.Topics)
	assert.LessOrEqual(t, len(result.Topics), maxTopics)

	var found bool
	for i, topic := range result.Topics {
		if topic.Value == "men's style guide" {
			found = true
			assert.Equal(t, types.TOPIC_KIND_PRIMARY, topic.Kind)
		}
		if i > 0 {
			assert.GreaterOrEqual(t, result.Topics[i-1].Weight, topic.Weight)
		}
	}
	assert.True(t, found)
}
