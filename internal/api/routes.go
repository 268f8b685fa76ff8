package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/", h.Index)
	router.POST("/search", h.SearchCase)
	router.GET("/download_pdf", h.DownloadPDF)
	router.GET("/history", h.History)
	router.GET("/health", h.HealthCheck)
}
