package v1

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/linkmesh-ai/linkmesh/app/core"
	"github.com/linkmesh-ai/linkmesh/pkg/errors"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

type KnowledgeLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewKnowledgeLogic(ctx context.Context, core *core.Core) *KnowledgeLogic {
	return &KnowledgeLogic{
		ctx:  ctx,
		core: core,
	}
}

func (l *KnowledgeLogic) Stats() (*types.KnowledgeStats, error) {
	stats, err := l.core.Knowledge().Stats(l.ctx)
	if err != nil {
		return nil, errors.New("KnowledgeLogic.Stats", "failed to load knowledge stats", err)
	}
	return stats, nil
}

// MarkSuggestionApplied records consumer feedback. Content referenced by an
// applied suggestion is pinned against eviction.
func (l *KnowledgeLogic) MarkSuggestionApplied(suggestionID string) error {
	suggestion, err := l.core.Store().SuggestionStore().Get(l.ctx, suggestionID)
	if err != nil && err != sql.ErrNoRows {
		return errors.New("KnowledgeLogic.MarkSuggestionApplied.SuggestionStore.Get", "failed to load suggestion", err)
	}
	if suggestion == nil || err == sql.ErrNoRows {
		return errors.New("KnowledgeLogic.MarkSuggestionApplied.SuggestionStore.Get.nil", "suggestion not found", nil).Code(http.StatusNotFound)
	}

	if err := l.core.Store().SuggestionStore().MarkApplied(l.ctx, suggestionID); err != nil {
		return errors.New("KnowledgeLogic.MarkSuggestionApplied.SuggestionStore.MarkApplied", "failed to mark suggestion applied", err)
	}
	return nil
}

func (l *KnowledgeLogic) ListSuggestions(sourceContentID string) ([]types.Suggestion, error) {
	list, err := l.core.Store().SuggestionStore().ListBySource(l.ctx, sourceContentID)
	if err != nil {
		return nil, errors.New("KnowledgeLogic.ListSuggestions.SuggestionStore.ListBySource", "failed to list suggestions", err)
	}
	return list, nil
}
