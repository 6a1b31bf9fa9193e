package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/linkmesh-ai/linkmesh/app/logic/v1"
	"github.com/linkmesh-ai/linkmesh/app/response"
	"github.com/linkmesh-ai/linkmesh/cmd/service/middleware"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
	"github.com/linkmesh-ai/linkmesh/pkg/utils"
)

type AnalyzeContentRequest struct {
	ID             string  `json:"id" binding:"required"`
	Title          string  `json:"title" binding:"required"`
	URL            string  `json:"url"`
	Content        string  `json:"content" binding:"required"`
	SiteID         string  `json:"site_id"`
	MaxSuggestions int     `json:"max_suggestions"`
	MinConfidence  float64 `json:"min_confidence"`
}

func (s *HttpSrv) AnalyzeContent(c *gin.Context) {
	s.analyze(c, false)
}

func (s *HttpSrv) AnalyzeEnhanced(c *gin.Context) {
	s.analyze(c, true)
}

func (s *HttpSrv) analyze(c *gin.Context, enhanced bool) {
	var (
		err error
		req AnalyzeContentRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}
	if err = middleware.VerifySiteID(c, req.SiteID); err != nil {
		response.APIError(c, err)
		return
	}

	site := middleware.InjectSite(c)
	args := v1.AnalyzeArgs{
		SiteID: site.SiteID,
		Item: types.BulkContentItem{
			ID:      req.ID,
			Title:   req.Title,
			URL:     req.URL,
			Content: req.Content,
		},
		MaxSuggestions: req.MaxSuggestions,
		MinConfidence:  req.MinConfidence,
	}

	logic := v1.NewAnalyzeLogic(c, s.Core)
	var result *v1.AnalyzeResult
	if enhanced {
		result, err = logic.EnhancedAnalyze(args)
	} else {
		result, err = logic.Analyze(args)
	}
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, result)
}
