package analyzer

import (
	"regexp"
	"sort"
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// AnchorOption is one candidate anchor phrase, verbatim from the source
// paragraph, with its highlighted context snippet.
type AnchorOption struct {
	Text           string  `json:"text"`
	Context        string  `json:"context"`
	Confidence     float64 `json:"confidence"`
	ParagraphIndex int     `json:"paragraph_index"`
	Offset         int     `json:"offset"`
}

const (
	minAnchorChars = 3
	maxAnchorChars = 60
	minAnchorWords = 2
	maxAnchorWords = 6
	maxAnchorOpts  = 10

	contextRadius = 30
)

type candidateKind string

const (
	kindNatural candidateKind = "natural"
	kindIntent  candidateKind = "intent"
	kindKeyword candidateKind = "keyword"
)

type anchorCandidate struct {
	phrase    string
	kind      candidateKind
	paragraph int
	offset    int
}

// AnchorGenerator extracts and scores anchor phrases for internal links.
type AnchorGenerator struct {
	weakPhrases  map[string]bool
	weakStarters map[string]bool
	weakEndings  map[string]bool
	posPatterns  [][]string
}

func NewAnchorGenerator() *AnchorGenerator {
	return &AnchorGenerator{
		weakPhrases: toSet(
			"click here", "read more", "learn more", "find out more", "discover",
			"check out", "see here", "view this", "this page", "full article",
			"details here", "more info", "click", "here", "link", "url", "website",
		),
		weakStarters: toSet(
			"the", "a", "an", "and", "or", "but", "because", "since", "when", "by",
			"for", "with", "about", "against", "before", "after", "above", "below",
			"to", "of", "in", "on", "at", "from", "into", "during", "until", "while",
		),
		weakEndings: toSet(
			"the", "a", "an", "and", "or", "but", "if", "with", "of", "to", "for",
			"in", "on", "at", "by", "about", "as", "into", "like", "through", "after",
			"over", "between", "out", "against", "during", "without", "before", "under",
		),
		posPatterns: [][]string{
			{"JJ", "NN"},
			{"JJ", "NNS"},
			{"JJ", "JJ", "NN"},
			{"JJ", "NN", "NN"},
			{"NN", "NN"},
			{"NN", "NNS"},
			{"NN", "NN", "NN"},
			{"VB", "DT", "NN"},
			{"VB", "JJ", "NNS"},
			{"VBG", "JJ", "NNS"},
			{"NN", "IN", "NN"},
			{"JJ", "NN", "IN", "NNS"},
			{"NN", "NN", "IN", "NN"},
			{"WRB", "TO", "VB", "NNS"},
			{"WRB", "TO", "VB", "JJ", "NNS"},
		},
	}
}

func toSet(items ...string) map[string]bool {
	s := make(map[string]bool, len(items))
	for _, item := range items {
		s[item] = true
	}
	return s
}

var intentPrefixes = []string{"how to", "guide to", "tips for", "best way to"}
var intentSuffixes = []string{"guide", "tips", "ideas", "for men", "for women", "tutorial", "basics"}
var intentIndicators = []string{"how to", "guide", "tips", "tutorial", "for men", "for women"}

// Generate returns scored anchor options for linking the given paragraphs
// to a target described by its keywords and title.
func (g *AnchorGenerator) Generate(paragraphs []string, targetKeywords []string, targetTitle string) []AnchorOption {
	if len(paragraphs) == 0 || len(targetKeywords) == 0 {
		return nil
	}

	var candidates []anchorCandidate
	for idx, paragraph := range paragraphs {
		candidates = append(candidates, g.naturalPhrases(paragraph, idx, targetKeywords)...)
		candidates = append(candidates, g.intentPhrases(paragraph, idx, targetKeywords, targetTitle)...)
		candidates = append(candidates, g.keywordPhrases(paragraph, idx, targetKeywords)...)
	}

	titleWords := toSet(strings.Fields(strings.ToLower(targetTitle))...)

	scored := make([]AnchorOption, 0, len(candidates))
	seen := make(map[string]bool)
	for _, c := range candidates {
		if len(c.phrase) < minAnchorChars || len(c.phrase) > maxAnchorChars {
			continue
		}
		lower := strings.ToLower(c.phrase)
		if seen[lower] {
			continue
		}
		seen[lower] = true

		scored = append(scored, AnchorOption{
			Text:           c.phrase,
			Context:        highlightContext(paragraphs[c.paragraph], c.offset, len(c.phrase)),
			Confidence:     g.score(c, targetKeywords, titleWords),
			ParagraphIndex: c.paragraph,
			Offset:         c.offset,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Confidence != scored[j].Confidence {
			return scored[i].Confidence > scored[j].Confidence
		}
		if scored[i].ParagraphIndex != scored[j].ParagraphIndex {
			return scored[i].ParagraphIndex < scored[j].ParagraphIndex
		}
		return scored[i].Text < scored[j].Text
	})
	if len(scored) > maxAnchorOpts {
		scored = scored[:maxAnchorOpts]
	}
	return scored
}

func (g *AnchorGenerator) naturalPhrases(paragraph string, idx int, targetKeywords []string) []anchorCandidate {
	doc, err := prose.NewDocument(paragraph,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil
	}
	tokens := doc.Tokens()
	lowerParagraph := strings.ToLower(paragraph)

	var result []anchorCandidate
	for i := range tokens {
		for _, pattern := range g.posPatterns {
			if i+len(pattern) > len(tokens) {
				continue
			}
			matched := true
			for j, pos := range pattern {
				if !strings.HasPrefix(tokens[i+j].Tag, pos) {
					matched = false
					break
				}
			}
			if !matched {
				continue
			}
			parts := make([]string, 0, len(pattern))
			for j := range pattern {
				parts = append(parts, tokens[i+j].Text)
			}
			phrase := strings.Join(parts, " ")
			if !containsAnyKeyword(strings.ToLower(phrase), targetKeywords) {
				continue
			}
			offset := strings.Index(lowerParagraph, strings.ToLower(phrase))
			if offset < 0 {
				continue
			}
			result = append(result, anchorCandidate{
				phrase:    paragraph[offset : offset+len(phrase)],
				kind:      kindNatural,
				paragraph: idx,
				offset:    offset,
			})
		}
	}
	return result
}

func (g *AnchorGenerator) intentPhrases(paragraph string, idx int, targetKeywords []string, targetTitle string) []anchorCandidate {
	keywords := append([]string{}, targetKeywords...)
	keywords = append(keywords, titleNouns(targetTitle)...)

	lowerParagraph := strings.ToLower(paragraph)
	var result []anchorCandidate
	for _, keyword := range keywords {
		for _, prefix := range intentPrefixes {
			phrase := prefix + " " + strings.ToLower(keyword)
			if offset := strings.Index(lowerParagraph, phrase); offset >= 0 {
				result = append(result, anchorCandidate{
					phrase:    paragraph[offset : offset+len(phrase)],
					kind:      kindIntent,
					paragraph: idx,
					offset:    offset,
				})
			}
		}
		for _, suffix := range intentSuffixes {
			phrase := strings.ToLower(keyword) + " " + suffix
			if offset := strings.Index(lowerParagraph, phrase); offset >= 0 {
				result = append(result, anchorCandidate{
					phrase:    paragraph[offset : offset+len(phrase)],
					kind:      kindIntent,
					paragraph: idx,
					offset:    offset,
				})
			}
		}
	}
	return result
}

var wordPattern = regexp.MustCompile(`\b[\w'-]+\b`)

func (g *AnchorGenerator) keywordPhrases(paragraph string, idx int, targetKeywords []string) []anchorCandidate {
	lowerParagraph := strings.ToLower(paragraph)
	words := wordPattern.FindAllStringIndex(paragraph, -1)

	var result []anchorCandidate
	for _, keyword := range targetKeywords {
		if len(keyword) < 4 {
			continue
		}
		keywordLower := strings.ToLower(keyword)
		pos := strings.Index(lowerParagraph, keywordLower)
		if pos < 0 {
			continue
		}

		// locate the word index the keyword starts on and widen by up to
		// three words each side
		wordIdx := -1
		for i, loc := range words {
			if loc[0] <= pos && pos < loc[1] {
				wordIdx = i
				break
			}
		}
		if wordIdx < 0 {
			continue
		}
		keywordWords := len(strings.Fields(keyword))
		start := wordIdx - 3
		if start < 0 {
			start = 0
		}
		end := wordIdx + keywordWords + 3
		if end > len(words) {
			end = len(words)
		}
		if end-start < minAnchorWords || end-start > maxAnchorWords {
			end = start + maxAnchorWords
			if end > len(words) {
				end = len(words)
			}
		}
		if end-start < minAnchorWords {
			continue
		}
		from, to := words[start][0], words[end-1][1]
		result = append(result, anchorCandidate{
			phrase:    strings.Trim(paragraph[from:to], " .,;:!?"),
			kind:      kindKeyword,
			paragraph: idx,
			offset:    from,
		})
	}
	return result
}

func (g *AnchorGenerator) score(c anchorCandidate, targetKeywords []string, titleWords map[string]bool) float64 {
	lower := strings.ToLower(c.phrase)
	phraseWords := strings.Fields(lower)

	score := map[candidateKind]float64{
		kindNatural: 0.6,
		kindIntent:  0.8,
		kindKeyword: 0.5,
	}[c.kind]

	keywordMatches := 0
	for _, keyword := range targetKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			keywordMatches++
		}
	}
	score += min64(0.3, 0.1*float64(keywordMatches))

	switch wordCount := len(phraseWords); {
	case wordCount < minAnchorWords:
		score -= 0.2
	case wordCount > maxAnchorWords:
		score -= 0.1
	case wordCount == 2:
		score += 0.05
	case wordCount <= 4:
		score += 0.1
	}

	titleMatches := 0
	for _, word := range phraseWords {
		if titleWords[word] {
			titleMatches++
		}
	}
	score += min64(0.2, 0.05*float64(titleMatches))

	for _, indicator := range intentIndicators {
		if strings.Contains(lower, indicator) {
			score += 0.15
			break
		}
	}

	if g.weakPhrases[lower] {
		score -= 0.5
	}
	if len(phraseWords) > 0 {
		if g.weakStarters[phraseWords[0]] {
			score -= 0.1
		}
		if g.weakEndings[phraseWords[len(phraseWords)-1]] {
			score -= 0.1
		}
		if g.weakStarters[phraseWords[0]] || g.weakEndings[phraseWords[len(phraseWords)-1]] {
			score -= 0.15
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// highlightContext wraps the anchor in ** markers with up to contextRadius
// characters either side, ellipsized when truncated.
func highlightContext(text string, offset, length int) string {
	if offset < 0 || offset+length > len(text) {
		return "..." + text[maxInt(0, offset):minInt(len(text), maxInt(0, offset)+length)] + "..."
	}
	start := maxInt(0, offset-contextRadius)
	end := minInt(len(text), offset+length+contextRadius)

	pre := text[start:offset]
	post := text[offset+length : end]
	if start > 0 {
		pre = "..." + pre
	}
	if end < len(text) {
		post = post + "..."
	}
	return pre + "**" + text[offset:offset+length] + "**" + post
}

func titleNouns(title string) []string {
	if title == "" {
		return nil
	}
	doc, err := prose.NewDocument(title,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil
	}
	var nouns []string
	for _, tok := range doc.Tokens() {
		if strings.HasPrefix(tok.Tag, "NN") && len(tok.Text) > 3 {
			nouns = append(nouns, tok.Text)
		}
	}
	return nouns
}

func containsAnyKeyword(lowerPhrase string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lowerPhrase, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
