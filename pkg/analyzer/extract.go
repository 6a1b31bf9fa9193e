package analyzer

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"
	prose "github.com/jdkato/prose/v2"

	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

// ErrUnparseable marks input with no analyzable text left after markup
// stripping. Low-information but parseable content returns empty sets.
var ErrUnparseable = errors.New("analyzer: no analyzable text after markup stripping")

type Extraction struct {
	Entities   []types.Entity
	Topics     []types.Topic
	Paragraphs []string
}

type Analyzer struct {
	lexicon    *Lexicon
	categories []TopicCategory
}

func NewAnalyzer(lexicon *Lexicon) *Analyzer {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Analyzer{
		lexicon:    lexicon,
		categories: DefaultTopicCategories(),
	}
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
)

// StripMarkup drops tags and squeezes runs of spaces, keeping newlines so
// paragraph boundaries survive.
func StripMarkup(raw string) string {
	plain := tagPattern.ReplaceAllString(raw, " ")
	plain = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'").Replace(plain)
	plain = whitespacePattern.ReplaceAllString(plain, " ")
	return strings.TrimSpace(plain)
}

func SplitParagraphs(plain string) []string {
	var result []string
	for _, p := range regexp.MustCompile(`\n+`).Split(plain, -1) {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Extract parses a content item into typed entities and ranked topics.
func (a *Analyzer) Extract(item *types.ContentItem) (*Extraction, error) {
	plain := StripMarkup(item.RawContent)
	paragraphs := SplitParagraphs(plain)
	if len(paragraphs) == 0 {
		return nil, ErrUnparseable
	}

	// Vocabulary is English only. Reliably foreign content yields an empty
	// extraction instead of noise matches.
	info := whatlanggo.Detect(plain)
	if info.IsReliable() && info.Lang != whatlanggo.Eng {
		return &Extraction{Paragraphs: paragraphs}, nil
	}

	titleLower := strings.ToLower(item.Title)

	type entityKey struct {
		entityType string
		canonical  string
	}
	seen := make(map[entityKey]bool)
	var entities []types.Entity

	add := func(entityType, canonical, surface string, paragraphIdx, offset int, confidence float64) {
		key := entityKey{entityType, canonical}
		if seen[key] {
			return
		}
		seen[key] = true
		entities = append(entities, types.Entity{
			ContentID:      item.ID,
			Type:           entityType,
			CanonicalName:  canonical,
			Surface:        surface,
			ParagraphIndex: paragraphIdx,
			Offset:         offset,
			Confidence:     confidence,
		})
	}

	for _, entityType := range a.lexicon.Types() {
		pattern := a.lexicon.Pattern(entityType)
		// title matches land on paragraph 0 with offset -1
		for _, loc := range pattern.FindAllStringIndex(item.Title, -1) {
			surface := item.Title[loc[0]:loc[1]]
			canonical := strings.ToLower(surface)
			add(entityType, canonical, surface, 0, -1, entityConfidence(canonical, titleLower, true))
		}
		for idx, paragraph := range paragraphs {
			for _, loc := range pattern.FindAllStringIndex(paragraph, -1) {
				surface := paragraph[loc[0]:loc[1]]
				canonical := strings.ToLower(surface)
				add(entityType, canonical, surface, idx, loc[0], entityConfidence(canonical, titleLower, idx == 0))
			}
		}
	}

	// Compound noun phrases promote lexicon fragments into more specific
	// entities, e.g. "navy blue oxford shirt". Phrases outside the lexicon
	// are handed to the topic ranker instead.
	var promoted []string
	for idx, paragraph := range paragraphs {
		for _, phrase := range compoundPhrases(paragraph) {
			lower := strings.ToLower(phrase)
			entityType, ok := a.lexicon.TypeOf(lower)
			if !ok {
				promoted = append(promoted, lower)
				continue
			}
			offset := strings.Index(strings.ToLower(paragraph), lower)
			confidence := entityConfidence(lower, titleLower, idx == 0) - 0.1
			if confidence < 0 {
				confidence = 0
			}
			add(entityType, lower, phrase, idx, offset, confidence)
		}
	}

	sortEntities(entities)

	return &Extraction{
		Entities:   entities,
		Topics:     extractTopics(a.categories, plain, item.Title, promoted),
		Paragraphs: paragraphs,
	}, nil
}

func entityConfidence(canonical, titleLower string, frontLoaded bool) float64 {
	words := len(strings.Fields(canonical))
	score := 0.5
	if words > 3 {
		words = 3
	}
	score += 0.15 * float64(words-1)
	if strings.Contains(titleLower, canonical) {
		score += 0.2
	}
	if frontLoaded {
		score += 0.1
	}
	if score > 0.98 {
		score = 0.98
	}
	return score
}

// sortEntities fixes the output order: confidence descending, then longer
// surface form, then earlier paragraph, then canonical name.
func sortEntities(entities []types.Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if len(a.Surface) != len(b.Surface) {
			return len(a.Surface) > len(b.Surface)
		}
		if a.ParagraphIndex != b.ParagraphIndex {
			return a.ParagraphIndex < b.ParagraphIndex
		}
		return a.CanonicalName < b.CanonicalName
	})
}

// compoundPhrases walks POS tags looking for adjective-led sequences of
// adjectives/nouns (prepositions and conjunctions allowed inside) that end
// on a noun and span at least two words.
func compoundPhrases(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil
	}

	tokens := doc.Tokens()
	var phrases []string
	i := 0
	for i < len(tokens) {
		if !strings.HasPrefix(tokens[i].Tag, "JJ") {
			i++
			continue
		}
		start := i
		for i < len(tokens) && (strings.HasPrefix(tokens[i].Tag, "JJ") ||
			strings.HasPrefix(tokens[i].Tag, "NN") ||
			tokens[i].Tag == "IN" ||
			tokens[i].Tag == "CC") {
			i++
		}
		if i-start >= 2 && strings.HasPrefix(tokens[i-1].Tag, "NN") {
			parts := make([]string, 0, i-start)
			for _, tok := range tokens[start:i] {
				parts = append(parts, tok.Text)
			}
			phrases = append(phrases, strings.Join(parts, " "))
		}
	}
	return phrases
}
