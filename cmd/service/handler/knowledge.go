package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/linkmesh-ai/linkmesh/app/logic/v1"
	"github.com/linkmesh-ai/linkmesh/app/response"
	"github.com/linkmesh-ai/linkmesh/pkg/utils"
)

func (s *HttpSrv) KnowledgeStats(c *gin.Context) {
	stats, err := v1.NewKnowledgeLogic(c, s.Core).Stats()
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, stats)
}

type ListSuggestionsRequest struct {
	ContentID string `form:"content_id" binding:"required"`
}

// ListSuggestions returns the stored suggestions for a source content item.
func (s *HttpSrv) ListSuggestions(c *gin.Context) {
	var (
		err error
		req ListSuggestionsRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	list, err := v1.NewKnowledgeLogic(c, s.Core).ListSuggestions(req.ContentID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}

type MarkSuggestionAppliedRequest struct {
	SuggestionID string `json:"suggestion_id" binding:"required"`
}

func (s *HttpSrv) MarkSuggestionApplied(c *gin.Context) {
	var (
		err error
		req MarkSuggestionAppliedRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	if err = v1.NewKnowledgeLogic(c, s.Core).MarkSuggestionApplied(req.SuggestionID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}
