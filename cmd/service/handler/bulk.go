package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	v1 "github.com/linkmesh-ai/linkmesh/app/logic/v1"
	"github.com/linkmesh-ai/linkmesh/app/response"
	"github.com/linkmesh-ai/linkmesh/cmd/service/middleware"
	"github.com/linkmesh-ai/linkmesh/pkg/types"
	"github.com/linkmesh-ai/linkmesh/pkg/utils"
)

type BulkProcessRequest struct {
	ContentItems      []types.BulkContentItem `json:"content_items" binding:"required"`
	KnowledgeBuilding bool                    `json:"knowledge_building"`
	BatchSize         int                     `json:"batch_size"`
	MaxRetries        int                     `json:"max_retries"`
	SiteID            string                  `json:"site_id"`
}

type BulkProcessResponse struct {
	JobID      string          `json:"job_id"`
	Status     types.JobStatus `json:"status"`
	TotalItems int             `json:"total_items"`
}

func (s *HttpSrv) BulkProcess(c *gin.Context) {
	var (
		err error
		req BulkProcessRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}
	if err = middleware.VerifySiteID(c, req.SiteID); err != nil {
		response.APIError(c, err)
		return
	}

	mode := types.JOB_MODE_GENERATE_SUGGESTIONS
	if req.KnowledgeBuilding {
		mode = types.JOB_MODE_BUILD_KNOWLEDGE
	}

	site := middleware.InjectSite(c)
	job, err := v1.NewBulkLogic(c, s.Core).Submit(v1.SubmitBulkArgs{
		SiteID:     site.SiteID,
		Items:      req.ContentItems,
		Mode:       mode,
		BatchSize:  req.BatchSize,
		MaxRetries: req.MaxRetries,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APIAccepted(c, BulkProcessResponse{
		JobID:      job.ID,
		Status:     job.Status,
		TotalItems: job.TotalItems,
	})
}

func (s *HttpSrv) BulkStatus(c *gin.Context) {
	jobID, _ := c.Params.Get("jobid")
	site := middleware.InjectSite(c)

	job, err := v1.NewBulkLogic(c, s.Core).GetJob(site.SiteID, jobID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, job)
}

func (s *HttpSrv) BulkStop(c *gin.Context) {
	jobID, _ := c.Params.Get("jobid")
	site := middleware.InjectSite(c)

	job, err := v1.NewBulkLogic(c, s.Core).StopJob(site.SiteID, jobID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, job)
}

func (s *HttpSrv) BulkJobs(c *gin.Context) {
	site := middleware.InjectSite(c)

	page, _ := strconv.ParseUint(c.Query("page"), 10, 64)
	pageSize, _ := strconv.ParseUint(c.Query("pagesize"), 10, 64)
	if page == 0 {
		page = 1
	}
	if pageSize == 0 || pageSize > 100 {
		pageSize = 20
	}

	list, err := v1.NewBulkLogic(c, s.Core).ListJobs(site.SiteID, page, pageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, list)
}
