package service

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linkmesh-ai/linkmesh/app/core"
	"github.com/linkmesh-ai/linkmesh/app/response"
	"github.com/linkmesh-ai/linkmesh/cmd/service/handler"
	"github.com/linkmesh-ai/linkmesh/cmd/service/middleware"
	"github.com/linkmesh-ai/linkmesh/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

// apiTimer records the per-route response time histogram.
func apiTimer(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		core.Metrics().ApiResponseObserve(c.FullPath(), start)
		if c.Writer.Status() >= 400 {
			core.Metrics().ApiErrorInc(c.Request.Method, c.FullPath(), c.Writer.Status())
		}
	}
}

func setupHttpRouter(s *handler.HttpSrv) {
	s.Engine.Use(gin.Recovery(), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(apiTimer(s.Core))

	s.Engine.GET("/health", func(c *gin.Context) {
		response.APISuccess(c, gin.H{"status": "ok"})
	})
	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	apiV1 := s.Engine.Group("/api/v1")
	apiV1.Use(middleware.Authorization(s.Core))
	{
		analyze := apiV1.Group("/analyze")
		analyze.Use(middleware.UseLimit(s.Core, "analyze"))
		{
			analyze.POST("/content", s.AnalyzeContent)
			analyze.POST("/enhanced", s.AnalyzeEnhanced)
		}

		bulk := apiV1.Group("/bulk")
		{
			bulk.POST("/process", middleware.UseLimit(s.Core, "bulk"), s.BulkProcess)
			bulk.GET("/status/:jobid", s.BulkStatus)
			bulk.POST("/stop/:jobid", s.BulkStop)
			bulk.GET("/jobs", s.BulkJobs)
		}

		knowledge := apiV1.Group("/knowledge")
		{
			knowledge.GET("/stats", s.KnowledgeStats)
		}

		suggestions := apiV1.Group("/suggestions")
		{
			suggestions.GET("", s.ListSuggestions)
			suggestions.POST("/applied", s.MarkSuggestionApplied)
		}
	}
}
