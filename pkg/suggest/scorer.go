package suggest

import (
	"context"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/linkmesh-ai/linkmesh/app/store"
	"github.com/linkmesh-ai/linkmesh/pkg/ai"
	"github.com/linkmesh-ai/linkmesh/pkg/knowledge"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

// Scorer estimates semantic similarity between the source item and each
// candidate, as a [0,1] value per candidate content id. Missing ids default
// to zero.
type Scorer interface {
	Scores(ctx context.Context, source *Source, candidates []types.Candidate) (map[string]float64, error)
}

// LexicalScorer is the default strategy: Jaccard overlap over the combined
// entity-name and topic-value sets. No external calls.
type LexicalScorer struct {
	base *knowledge.Base
}

func NewLexicalScorer(base *knowledge.Base) *LexicalScorer {
	return &LexicalScorer{base: base}
}

func (s *LexicalScorer) Scores(ctx context.Context, source *Source, candidates []types.Candidate) (map[string]float64, error) {
	sourceTerms := termSet(source.Entities, source.Topics)

	result := make(map[string]float64, len(candidates))
	for _, candidate := range candidates {
		entities, err := s.base.EntitiesOf(ctx, candidate.ContentID)
		if err != nil {
			return nil, err
		}
		topics, err := s.base.TopicsOf(ctx, candidate.ContentID)
		if err != nil {
			return nil, err
		}
		result[candidate.ContentID] = jaccard(sourceTerms, termSet(entities, topics))
	}
	return result, nil
}

func termSet(entities []types.Entity, topics []types.Topic) map[string]bool {
	set := make(map[string]bool, len(entities)+len(topics))
	for _, e := range entities {
		set[strings.ToLower(e.CanonicalName)] = true
	}
	for _, t := range topics {
		set[strings.ToLower(t.Value)] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var shared int
	for term := range a {
		if b[term] {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// EmbeddingScorer ranks candidates by cosine similarity between the source
// text embedding and the stored content vectors.
type EmbeddingScorer struct {
	embedder ai.Embedder
	vectors  store.VectorStore
}

func NewEmbeddingScorer(embedder ai.Embedder, vectors store.VectorStore) *EmbeddingScorer {
	return &EmbeddingScorer{embedder: embedder, vectors: vectors}
}

func (s *EmbeddingScorer) Scores(ctx context.Context, source *Source, candidates []types.Candidate) (map[string]float64, error) {
	embeddings, err := s.embedder.Embed(ctx, []string{source.Item.Title + "\n" + strings.Join(source.Paragraphs, "\n")})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return map[string]float64{}, nil
	}

	matches, err := s.vectors.Query(ctx, pgvector.NewVector(embeddings[0]), uint64(len(candidates))*2)
	if err != nil {
		return nil, err
	}

	result := make(map[string]float64, len(matches))
	for _, match := range matches {
		cos := match.Cos
		if cos < 0 {
			cos = 0
		}
		if cos > 1 {
			cos = 1
		}
		result[match.ContentID] = cos
	}
	return result, nil
}
