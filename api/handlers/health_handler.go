package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vscraper/vscraper-go/internal/app"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	jobMgr *app.JobManager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(jobMgr *app.JobManager) *HealthHandler {
	return &HealthHandler{jobMgr: jobMgr}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ready",
		"active_jobs": h.jobMgr.ActiveCount(),
	})
}
