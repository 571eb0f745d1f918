package api

import (
	"github.com/gin-gonic/gin"

	"github.com/vscraper/vscraper-go/api/handlers"
	"github.com/vscraper/vscraper-go/api/middleware"
	"github.com/vscraper/vscraper-go/internal/app"
	"github.com/vscraper/vscraper-go/internal/events"
	"github.com/vscraper/vscraper-go/pkg/logger"
)

// SetupRouter sets up the HTTP router
func SetupRouter(
	jobMgr *app.JobManager,
	installer *app.Installer,
	store *app.ConfigStore,
	emitter *events.Emitter,
	logAdapter *logger.LoggerAdapter,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	log := logAdapter.GetSingleLogger()

	// Middleware
	router.Use(middleware.LoggerWithAdapter(logAdapter))
	router.Use(middleware.RecoveryWithAdapter(logAdapter))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(jobMgr)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Download endpoints
		downloadHandler := handlers.NewDownloadHandler(jobMgr, log)
		downloads := v1.Group("/downloads")
		{
			downloads.POST("", downloadHandler.SubmitDownload)
			downloads.POST("/cancel", downloadHandler.CancelDownload)
			downloads.GET("", downloadHandler.ListJobs)
			downloads.GET("/stats", downloadHandler.GetStats)
			downloads.GET("/:id", downloadHandler.GetJob)
		}

		// Configuration endpoints
		configHandler := handlers.NewConfigHandler(store, log)
		config := v1.Group("/config")
		{
			config.GET("", configHandler.GetConfig)
			config.PUT("", configHandler.UpdateConfig)
			config.PUT("/homepage", configHandler.SetHomepagePreference)
		}

		// Tool installation endpoints
		toolsHandler := handlers.NewToolsHandler(installer, log)
		tools := v1.Group("/tools")
		{
			tools.POST("/install", toolsHandler.InstallAll)
			tools.GET("", toolsHandler.GetStates)
		}

		// Event stream
		eventsHandler := handlers.NewEventsHandler(emitter, log)
		v1.GET("/events", eventsHandler.HandleWebSocket)
	}

	return router
}
