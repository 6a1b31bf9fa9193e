package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnchorGeneratorBasics(t *testing.T) {
	g := NewAnchorGenerator()

	paragraphs := []string{
		"Learning how to style oxford shirts takes little effort once the basics are clear.",
		"A good oxford shirt guide starts with collar roll and fabric weight.",
	}

	options := g.Generate(paragraphs, []string{"oxford shirt", "oxford shirts"}, "How to Style Oxford Shirts")
	require.NotEmpty(t, options)
	assert.LessOrEqual(t, len(options), maxAnchorOpts)

	seen := make(map[string]bool)
	for i, opt := range options {
		// anchor must be a verbatim substring of its paragraph
		require.Less(t, opt.ParagraphIndex, len(paragraphs))
		paragraph := paragraphs[opt.ParagraphIndex]
		require.GreaterOrEqual(t, opt.Offset, 0)
		require.LessOrEqual(t, opt.Offset+len(opt.Text), len(paragraph))
		assert.Equal(t, opt.Text, paragraph[opt.Offset:opt.Offset+len(opt.Text)])

		assert.GreaterOrEqual(t, opt.Confidence, 0.0)
		assert.LessOrEqual(t, opt.Confidence, 1.0)
		assert.GreaterOrEqual(t, len(opt.Text), minAnchorChars)
		assert.LessOrEqual(t, len(opt.Text), maxAnchorChars)

		assert.Contains(t, opt.Context, "**"+opt.Text+"**")

		lower := strings.ToLower(opt.Text)
		assert.False(t, seen[lower], "duplicate anchor %q", opt.Text)
		seen[lower] = true

		if i > 0 {
			assert.GreaterOrEqual(t, options[i-1].Confidence, opt.Confidence)
		}
	}
}

func TestAnchorGeneratorIntentPhrase(t *testing.T) {
	g := NewAnchorGenerator()

	paragraphs := []string{
		"Start with how to style oxford shirts before moving to heavier fabrics.",
	}
	options := g.Generate(paragraphs, []string{"style oxford shirts"}, "")
	require.NotEmpty(t, options)

	// intent phrases outrank bare keyword windows
	assert.Equal(t, "how to style oxford shirts", strings.ToLower(options[0].Text))
}

func TestAnchorGeneratorEmptyInput(t *testing.T) {
	g := NewAnchorGenerator()

	assert.Empty(t, g.Generate(nil, []string{"chinos"}, ""))
	assert.Empty(t, g.Generate([]string{"Some paragraph."}, nil, ""))
}

func TestAnchorScoreWeakPhrases(t *testing.T) {
	g := NewAnchorGenerator()
	titleWords := map[string]bool{}

	weak := g.score(anchorCandidate{phrase: "click here", kind: kindKeyword}, []string{"click"}, titleWords)
	strong := g.score(anchorCandidate{phrase: "oxford shirt styling", kind: kindKeyword}, []string{"oxford shirt"}, titleWords)
	assert.Greater(t, strong, weak)

	weakEnds := g.score(anchorCandidate{phrase: "styling shirts for", kind: kindKeyword}, []string{"shirts"}, titleWords)
	clean := g.score(anchorCandidate{phrase: "styling oxford shirts", kind: kindKeyword}, []string{"shirts"}, titleWords)
	assert.Greater(t, clean, weakEnds)
}

func TestHighlightContext(t *testing.T) {
	text := "The oxford shirt remains the backbone of any considered wardrobe, season after season."
	offset := strings.Index(text, "oxford shirt")

	context := highlightContext(text, offset, len("oxford shirt"))
	assert.Contains(t, context, "**oxford shirt**")
	assert.True(t, strings.HasSuffix(context, "..."))
}
