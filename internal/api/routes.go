package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes configures the dashboard gateway routes.
func SetupRoutes(router *gin.Engine, handlers *Handlers, logger *logrus.Logger) {
	// Global middleware
	router.Use(Recovery(logger))
	router.Use(RequestLogger(logger))
	router.Use(CORS())

	// Health check (public)
	router.GET("/health", handlers.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/overview", handlers.Overview)

		devices := v1.Group("/devices/:id")
		{
			devices.GET("/latest", handlers.DeviceLatest)
			devices.GET("/series", handlers.DeviceSeries)
			devices.GET("/export", handlers.ExportDevice)
			devices.GET("/commands", handlers.DeviceCommands)
			devices.POST("/commands", handlers.SendCommands)
		}

		runs := v1.Group("/runs/:id")
		{
			runs.GET("/series", handlers.RunSeries)
			runs.GET("/export", handlers.ExportRun)
			runs.GET("/export_wide", handlers.ExportRunWide)
		}
	}
}
