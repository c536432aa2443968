package http

import (
	"github.com/gin-gonic/gin"
	"github.com/medcompare/backend/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *logrus.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	router := gin.New()

	var limiter *IPRateLimiter
	if cfg.RateLimit.PerIP > 0 {
		limiter = NewIPRateLimiter(cfg.RateLimit.PerIP)
	}

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(MetricsMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check and metrics endpoints
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(limiter))
	{
		v1.POST("/search", handler.Search)
		v1.GET("/search", handler.CurrentResults)

		sources := v1.Group("/sources")
		{
			sources.GET("", handler.ListSources)
			sources.PUT("", handler.UpdateSources)
			sources.POST("/:source/toggle", handler.ToggleSource)
		}

		selection := v1.Group("/selection")
		{
			selection.GET("", handler.ListSelection)
			selection.POST("/toggle", handler.ToggleSelection)
			selection.DELETE("/items", handler.RemoveSelection)
			selection.DELETE("", handler.ClearSelection)
			selection.POST("/save", handler.SaveSelection)
		}

		saved := v1.Group("/saved")
		{
			saved.GET("", handler.ListSaved)
			saved.DELETE("/items", handler.RemoveSaved)
			saved.DELETE("", handler.ClearSaved)
		}

		v1.GET("/compare", handler.Compare)
		v1.GET("/compare/export", handler.ExportComparison)

		v1.POST("/ocr", handler.ExtractMedicines)
	}

	return router
}
