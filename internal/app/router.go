package app

import (
	"github.com/gin-gonic/gin"

	"github.com/dashfault/dashfault-backend/internal/http/handlers"
	"github.com/dashfault/dashfault-backend/internal/http/middleware"
	"github.com/dashfault/dashfault-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, handlerset Handlers, mw Middleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log))

	router.GET("/healthcheck", handlers.Healthcheck)

	api := router.Group("/api")

	// The analysis service calls these; they carry no user identity and
	// are expected to be reachable only from the internal network.
	internal := api.Group("/internal")
	{
		internal.POST("/ai/callback/:videoId", handlerset.AIInternal.AnalysisCallback)
		internal.POST("/ai/analyze/:videoId", handlerset.AIInternal.RequestAnalysis)
	}

	protected := api.Group("/")
	protected.Use(mw.Auth.RequireAuth())
	{
		protected.POST("/storage/upload-intent", handlerset.Storage.CreateUploadIntent)

		protected.POST("/videos/upload-notify", handlerset.Media.UploadNotify)
		protected.GET("/videos", handlerset.Media.ListVideos)
		protected.GET("/videos/:videoId", handlerset.Media.GetVideo)
		protected.DELETE("/videos/:videoId", handlerset.Media.DeleteVideo)
		protected.GET("/videos/:videoId/status", handlerset.Media.GetStatus)

		protected.GET("/reports", handlerset.Report.ListReports)
		protected.GET("/reports/:reportId", handlerset.Report.GetReport)
		protected.DELETE("/reports/:reportId", handlerset.Report.DeleteReport)
		protected.POST("/reports/:reportId/pdf", handlerset.Report.GeneratePdf)
		protected.GET("/reports/:reportId/pdf", handlerset.Report.GetPdf)

		protected.POST("/push-tokens", handlerset.PushToken.Register)
	}

	return router
}
