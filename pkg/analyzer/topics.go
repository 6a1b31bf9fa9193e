package analyzer

import (
	"sort"
	"strings"

	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

// TopicCategory groups weighted terms. The category weight dominates the
// topic score, multi-word terms rank above their generic fragments.
type TopicCategory struct {
	Name   string
	Weight float64
	Terms  []string
}

const maxTopics = 15

func DefaultTopicCategories() []TopicCategory {
	return []TopicCategory{
		{
			Name:   "body_shape_intent",
			Weight: 1.6,
			Terms: []string{
				"men's body shape guide", "how to dress for body shape", "body shape styling",
				"inverted triangle body shape", "triangle body shape men", "athletic build styling",
				"rectangle body styling", "oval body shape men",
			},
		},
		{
			Name:   "specific_styles",
			Weight: 1.7,
			Terms: []string{
				"old money style for men", "preppy fashion guide", "ivy league aesthetic",
				"trad style men", "nautical fashion guide", "british countryside style",
				"sloane ranger look", "minimalist fashion for men", "capsule wardrobe guide",
				"gaucho style", "southern preppy look",
			},
		},
		{
			Name:   "clothing_specific",
			Weight: 1.5,
			Terms: []string{
				"how to style oxford shirts", "tailored blazer guide", "navy jacket outfits",
				"chino trouser styling", "penny loafer outfits", "cable knit jumper",
				"tweed jacket combinations", "linen suit styling", "camel coat outfits", "silk tie pairings",
			},
		},
		{
			Name:   "colour_specific",
			Weight: 1.5,
			Terms: []string{
				"true spring colours", "cool summer colour palette", "warm autumn colours",
				"seasonal colour analysis", "men's colour theory", "colour coordination guide",
				"navy blue styling", "burgundy colour combinations", "forest green outfits",
			},
		},
		{
			Name:   "fashion_services",
			Weight: 1.4,
			Terms: []string{
				"men's image consultant", "personal stylist for men", "wardrobe planning guide",
				"colour analysis service", "body shape analysis for men", "bespoke fashion advice",
				"style consultation benefits",
			},
		},
		{
			Name:   "styling_guides",
			Weight: 1.6,
			Terms: []string{
				"men's style guide", "fashion tips for gentlemen", "dressing rules for men",
				"styling principles for body types", "fashion rules for professionals",
				"wardrobe essentials for men", "must-have items for men", "styling secrets for men",
			},
		},
		{
			Name:   "body_parts",
			Weight: 1.0,
			Terms: []string{
				"broad shoulders", "narrow waist", "muscular build", "round middle",
				"slim hips", "long torso", "short legs", "athletic chest",
			},
		},
		{
			Name:   "clothing_items",
			Weight: 1.2,
			Terms: []string{
				"oxford shirt", "tailored blazer", "navy jacket", "chino trousers", "penny loafers",
				"cable knit", "tweed jacket", "linen suit", "camel coat", "silk tie",
			},
		},
		{
			// 泛词兜底，权重压到最低
			Name:   "generic_terms",
			Weight: 0.3,
			Terms: []string{
				"style", "fashion", "look", "aesthetic", "classic", "traditional",
				"elegant", "sophisticated", "wardrobe", "outfit", "attire",
			},
		},
	}
}

// promotedCategoryWeight keeps noun-phrase topics below curated categories
// but above the generic fallback.
const promotedCategoryWeight = 0.8

// extractTopics scores every category term found in title+content plus the
// promoted noun phrases, and keeps the top ranked ones. Title and
// first-paragraph terms weigh higher; terms present in the title become
// primary topics.
func extractTopics(categories []TopicCategory, content, title string, promoted []string) []types.Topic {
	haystack := strings.ToLower(content + " " + title)
	titleLower := strings.ToLower(title)

	firstParagraph := content
	if idx := strings.IndexByte(content, '\n'); idx >= 0 {
		firstParagraph = content[:idx]
	}
	firstLower := strings.ToLower(firstParagraph)

	termScore := func(term string, weight float64) float64 {
		lengthScore := float64(len(term)) / 20
		if lengthScore > 1 {
			lengthScore = 1
		}
		wordScore := float64(len(strings.Fields(term))) / 4
		if wordScore > 1 {
			wordScore = 1
		}
		score := weight*0.5 + wordScore*0.3 + lengthScore*0.2
		if strings.Contains(titleLower, term) {
			score += 0.1
		}
		if strings.Contains(firstLower, term) {
			score += 0.05
		}
		return score
	}

	type scored struct {
		term  string
		score float64
	}
	seen := make(map[string]float64)
	for _, category := range categories {
		for _, term := range category.Terms {
			if !strings.Contains(haystack, term) {
				continue
			}
			score := termScore(term, category.Weight)
			if prev, ok := seen[term]; !ok || score > prev {
				seen[term] = score
			}
		}
	}

	for _, phrase := range promoted {
		term := strings.ToLower(phrase)
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = termScore(term, promotedCategoryWeight)
	}

	ranked := make([]scored, 0, len(seen))
	for term, score := range seen {
		ranked = append(ranked, scored{term, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].term < ranked[j].term
	})
	if len(ranked) > maxTopics {
		ranked = ranked[:maxTopics]
	}

	topics := make([]types.Topic, 0, len(ranked))
	for _, r := range ranked {
		kind := types.TOPIC_KIND_SUB
		if strings.Contains(titleLower, r.term) {
			kind = types.TOPIC_KIND_PRIMARY
		}
		topics = append(topics, types.Topic{
			Value:  r.term,
			Kind:   kind,
			Weight: r.score,
		})
	}
	return topics
}
