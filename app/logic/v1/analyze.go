package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/linkmesh-ai/linkmesh/app/core"
	"github.com/linkmesh-ai/linkmesh/pkg/analyzer"
	"github.com/linkmesh-ai/linkmesh/pkg/errors"
	"github.com/linkmesh-ai/linkmesh/pkg/suggest"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
	"github.com/linkmesh-ai/linkmesh/pkg/utils"
)

type AnalyzeLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewAnalyzeLogic(ctx context.Context, core *core.Core) *AnalyzeLogic {
	return &AnalyzeLogic{
		ctx:  ctx,
		core: core,
	}
}

type AnalyzeArgs struct {
	SiteID         string
	Item           types.BulkContentItem
	MaxSuggestions int
	MinConfidence  float64
}

type AnalyzeResult struct {
	LinkSuggestions []types.Suggestion `json:"link_suggestions"`
	Analysis        AnalysisSummary    `json:"analysis"`
	ProcessingTime  float64            `json:"processing_time"`
	Status          string             `json:"status"`
}

type AnalysisSummary struct {
	Entities       []types.Entity `json:"entities"`
	Topics         []types.Topic  `json:"topics"`
	ParagraphCount int            `json:"paragraph_count"`
}

// Analyze runs the synchronous single-item path with the lexical scorer.
func (l *AnalyzeLogic) Analyze(args AnalyzeArgs) (*AnalyzeResult, error) {
	return l.analyze(args, "content", l.core.SuggestLexical(), false)
}

// EnhancedAnalyze runs the configured scorer and also feeds the analyzed
// item into the knowledge base.
func (l *AnalyzeLogic) EnhancedAnalyze(args AnalyzeArgs) (*AnalyzeResult, error) {
	return l.analyze(args, "enhanced", l.core.Suggest(), true)
}

func (l *AnalyzeLogic) analyze(args AnalyzeArgs, mode string, engine *suggest.Engine, buildKnowledge bool) (*AnalyzeResult, error) {
	defer l.core.Metrics().AnalyzeTimer(mode).ObserveDuration()
	start := time.Now()

	cacheKey := analyzeCacheKey(mode, args)
	if cached, err := l.core.Cache().Get(l.ctx, cacheKey); err == nil && cached != "" {
		var result AnalyzeResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			result.Status = "cached"
			return &result, nil
		}
	}

	item := types.ContentItem{
		ID:         args.Item.ID,
		SiteID:     args.SiteID,
		Title:      args.Item.Title,
		URL:        args.Item.URL,
		RawContent: args.Item.Content,
		IngestedAt: time.Now().Unix(),
		UpdatedAt:  time.Now().Unix(),
	}

	extraction, err := l.core.Analyzer().Extract(&item)
	if err != nil {
		if err == analyzer.ErrUnparseable {
			return nil, errors.New("AnalyzeLogic.analyze.Extract", "content has no analyzable text", err).Code(http.StatusBadRequest)
		}
		return nil, errors.New("AnalyzeLogic.analyze.Extract", "failed to analyze content", err)
	}

	if buildKnowledge {
		if err := l.ingest(item, extraction); err != nil {
			return nil, err
		}
	}

	suggestions, err := engine.Suggest(l.ctx, &suggest.Source{
		Item:       item,
		Entities:   extraction.Entities,
		Topics:     extraction.Topics,
		Paragraphs: extraction.Paragraphs,
	}, args.MaxSuggestions, args.MinConfidence)
	if err != nil {
		if err == suggest.ErrNotReady {
			return nil, errors.New("AnalyzeLogic.analyze.Suggest", "knowledge base is still building, try again later", err).Code(http.StatusConflict)
		}
		return nil, errors.New("AnalyzeLogic.analyze.Suggest", "failed to generate suggestions", err)
	}

	suggestions = l.persistSuggestions(item.ID, suggestions)

	result := &AnalyzeResult{
		LinkSuggestions: suggestions,
		Analysis: AnalysisSummary{
			Entities:       extraction.Entities,
			Topics:         extraction.Topics,
			ParagraphCount: len(extraction.Paragraphs),
		},
		ProcessingTime: time.Since(start).Seconds(),
		Status:         "success",
	}

	if raw, err := json.Marshal(result); err == nil {
		ttl := time.Duration(l.core.Cfg().Analyze.CacheTTLSecond) * time.Second
		if err := l.core.Cache().SetEx(l.ctx, cacheKey, string(raw), ttl); err != nil {
			slog.Warn("failed to cache analyze result", slog.String("key", cacheKey), slog.String("error", err.Error()))
		}
	}

	return result, nil
}

// ingest pushes the analyzed item into the knowledge base, with its
// embedding when ai is enabled.
func (l *AnalyzeLogic) ingest(item types.ContentItem, extraction *analyzer.Extraction) error {
	if err := l.core.Knowledge().Upsert(l.ctx, item, extraction.Entities, extraction.Topics); err != nil {
		return errors.New("AnalyzeLogic.ingest.Upsert", "failed to update knowledge base", err)
	}

	if embedder := l.core.Embedder(); embedder != nil {
		timer := l.core.Metrics().EmbeddingRequestTimer()
		embeddings, err := embedder.Embed(l.ctx, []string{item.Title + "\n" + item.RawContent})
		timer.ObserveDuration()
		if err != nil {
			// 向量缺失只影响 enhanced 排序，不阻断流程
			l.core.Metrics().EmbeddingErrorInc("embed")
			slog.Warn("failed to embed content", slog.String("content_id", item.ID), slog.String("error", err.Error()))
			return nil
		}
		if len(embeddings) > 0 {
			if err := l.core.Store().VectorStore().Upsert(l.ctx, types.Vector{
				ContentID: item.ID,
				Embedding: pgvector.NewVector(embeddings[0]),
				UpdatedAt: time.Now().Unix(),
			}); err != nil {
				slog.Warn("failed to store content vector", slog.String("content_id", item.ID), slog.String("error", err.Error()))
			}
		}
	}
	return nil
}

// persistSuggestions assigns ids and replaces the stored suggestions for
// the source item, so applied feedback can reference them later.
func (l *AnalyzeLogic) persistSuggestions(sourceID string, suggestions []types.Suggestion) []types.Suggestion {
	now := time.Now().Unix()
	for i := range suggestions {
		suggestions[i].ID = utils.GenUniqIDStr()
		suggestions[i].CreatedAt = now
	}

	err := l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().SuggestionStore().DeleteBySource(ctx, sourceID); err != nil {
			return err
		}
		if len(suggestions) == 0 {
			return nil
		}
		return l.core.Store().SuggestionStore().BatchCreate(ctx, suggestions)
	})
	if err != nil {
		slog.Warn("failed to persist suggestions", slog.String("source_content_id", sourceID), slog.String("error", err.Error()))
	}
	return suggestions
}

func analyzeCacheKey(mode string, args AnalyzeArgs) string {
	return fmt.Sprintf("linkmesh:analyze:%s:%s", mode,
		utils.MD5(fmt.Sprintf("%s|%s|%s|%s|%d|%.4f",
			args.SiteID, args.Item.ID, args.Item.Title, args.Item.Content, args.MaxSuggestions, args.MinConfidence)))
}
