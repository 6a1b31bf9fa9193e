// Package suggest ranks candidate link targets for a content item and
// produces anchor/confidence/placement tuples.
package suggest

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/linkmesh-ai/linkmesh/pkg/analyzer"
	"github.com/linkmesh-ai/linkmesh/pkg/knowledge"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

// ErrNotReady signals the knowledge base has not reached its minimum
// content count. Recoverable: keep building knowledge, do not retry
// blindly.
var ErrNotReady = errors.New("suggest: knowledge base is not ready for analysis")

const (
	// over-fetch factor applied to max_suggestions when pulling candidates
	candidateOverFetch = 3

	// confidence mix
	weightShare   = 0.6
	semanticShare = 0.3
	recencyShare  = 0.1
)

type Config struct {
	MaxSuggestions int     `toml:"max_suggestions"`
	MinConfidence  float64 `toml:"min_confidence"`
}

func (c *Config) FromENVOrDefault() {
	if c.MaxSuggestions <= 0 {
		c.MaxSuggestions = types.DEFAULT_MAX_SUGGESTIONS
	}
	if c.MinConfidence <= 0 {
		c.MinConfidence = types.DEFAULT_MIN_CONFIDENCE
	}
}

// Source is the item suggestions are generated for, with its extraction.
// RawContent may still carry markup; Paragraphs are the stripped text the
// anchors must be located in.
type Source struct {
	Item       types.ContentItem
	Entities   []types.Entity
	Topics     []types.Topic
	Paragraphs []string
}

type Engine struct {
	base    *knowledge.Base
	anchors *analyzer.AnchorGenerator
	scorer  Scorer
	cfg     Config
}

// NewEngine builds a suggestion engine. A nil scorer falls back to the
// lexical-overlap default.
func NewEngine(base *knowledge.Base, scorer Scorer, cfg Config) *Engine {
	cfg.FromENVOrDefault()
	if scorer == nil {
		scorer = NewLexicalScorer(base)
	}
	return &Engine{
		base:    base,
		anchors: analyzer.NewAnchorGenerator(),
		scorer:  scorer,
		cfg:     cfg,
	}
}

// Suggest returns up to maxSuggestions ranked link suggestions for source.
// Zero arguments fall back to the engine config.
func (e *Engine) Suggest(ctx context.Context, source *Source, maxSuggestions int, minConfidence float64) ([]types.Suggestion, error) {
	if maxSuggestions <= 0 {
		maxSuggestions = e.cfg.MaxSuggestions
	}
	if minConfidence <= 0 {
		minConfidence = e.cfg.MinConfidence
	}

	ready, err := e.base.Ready(ctx)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, ErrNotReady
	}

	candidates, err := e.base.CandidatesFor(ctx, source.Item.ID, source.Entities, source.Topics, candidateOverFetch*maxSuggestions)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	similarities, err := e.scorer.Scores(ctx, source, candidates)
	if err != nil {
		return nil, err
	}
	priors := recencyPriors(candidates)

	var suggestions []types.Suggestion
	seenTargets := make(map[string]bool)
	for i, candidate := range candidates {
		if candidate.ContentID == source.Item.ID || seenTargets[candidate.ContentID] {
			continue
		}

		confidence := clamp01(weightShare*candidate.Weight +
			semanticShare*similarities[candidate.ContentID] +
			recencyShare*priors[i])
		if confidence < minConfidence {
			continue
		}

		anchor := e.locateAnchor(ctx, source, candidate)
		if anchor == nil {
			// no locatable placement, drop the candidate silently
			continue
		}

		seenTargets[candidate.ContentID] = true
		suggestions = append(suggestions, types.Suggestion{
			SourceContentID: source.Item.ID,
			AnchorText:      anchor.Text,
			TargetContentID: candidate.ContentID,
			TargetURL:       candidate.URL,
			Confidence:      confidence,
			Context:         anchor.Context,
			ParagraphIndex:  anchor.ParagraphIndex,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return suggestions[i].ParagraphIndex < suggestions[j].ParagraphIndex
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions, nil
}

// locateAnchor picks the best verbatim anchor phrase naming an entity or
// topic shared with the candidate, preferring front-loaded placements that
// are not already linked.
func (e *Engine) locateAnchor(ctx context.Context, source *Source, candidate types.Candidate) *analyzer.AnchorOption {
	keywords := e.sharedKeywords(ctx, source, candidate)
	if len(keywords) == 0 {
		return nil
	}

	options := e.anchors.Generate(source.Paragraphs, keywords, candidate.Title)
	if len(options) == 0 {
		return nil
	}

	firstHalf := (len(source.Paragraphs) + 1) / 2

	var fallback *analyzer.AnchorOption
	for i := range options {
		option := options[i]
		if alreadyLinked(source.Item.RawContent, option.Text) {
			continue
		}
		if option.ParagraphIndex < firstHalf {
			return &option
		}
		if fallback == nil {
			fallback = &option
		}
	}
	return fallback
}

func (e *Engine) sharedKeywords(ctx context.Context, source *Source, candidate types.Candidate) []string {
	targetEntities, err := e.base.EntitiesOf(ctx, candidate.ContentID)
	if err != nil {
		return nil
	}
	targetTopics, err := e.base.TopicsOf(ctx, candidate.ContentID)
	if err != nil {
		return nil
	}

	targetTerms := termSet(targetEntities, targetTopics)

	var shared []string
	for _, entity := range source.Entities {
		if targetTerms[strings.ToLower(entity.CanonicalName)] {
			shared = append(shared, entity.CanonicalName)
		}
	}
	for _, topic := range source.Topics {
		if targetTerms[strings.ToLower(topic.Value)] {
			shared = append(shared, topic.Value)
		}
	}
	return lo.Uniq(shared)
}

var htmlAnchorPattern = regexp.MustCompile(`(?is)<a\b[^>]*>.*?</a>`)

// alreadyLinked reports whether the phrase occurs inside an existing link
// in the raw (possibly marked-up) content.
func alreadyLinked(rawContent, phrase string) bool {
	if strings.Contains(strings.ToLower(rawContent), strings.ToLower("["+phrase+"](")) {
		return true
	}
	lowerPhrase := strings.ToLower(phrase)
	for _, match := range htmlAnchorPattern.FindAllString(rawContent, -1) {
		if strings.Contains(strings.ToLower(match), lowerPhrase) {
			return true
		}
	}
	return false
}

// recencyPriors maps candidates to a [0,1] prior favoring recent items,
// deterministic for a fixed candidate order.
func recencyPriors(candidates []types.Candidate) []float64 {
	priors := make([]float64, len(candidates))
	if len(candidates) == 1 {
		priors[0] = 1
		return priors
	}

	var oldest, newest int64
	for i, c := range candidates {
		if i == 0 || c.IngestedAt < oldest {
			oldest = c.IngestedAt
		}
		if c.IngestedAt > newest {
			newest = c.IngestedAt
		}
	}
	span := newest - oldest
	for i, c := range candidates {
		if span == 0 {
			priors[i] = 1
			continue
		}
		priors[i] = float64(c.IngestedAt-oldest) / float64(span)
	}
	return priors
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
