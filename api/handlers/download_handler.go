package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vscraper/vscraper-go/internal/app"
	"github.com/vscraper/vscraper-go/internal/domain"
	"go.uber.org/zap"
)

// DownloadHandler handles download-related HTTP requests
type DownloadHandler struct {
	jobMgr *app.JobManager
	logger *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(jobMgr *app.JobManager, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		jobMgr: jobMgr,
		logger: logger,
	}
}

// SubmitDownload handles POST /api/v1/downloads
func (h *DownloadHandler) SubmitDownload(c *gin.Context) {
	var req domain.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.jobMgr.Submit(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrDuplicateActiveJob):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.Error("Failed to submit download", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// CancelRequest is the body for POST /api/v1/downloads/cancel
type CancelRequest struct {
	URL string `json:"url" binding:"required"`
}

// CancelDownload handles POST /api/v1/downloads/cancel. Cancellation is
// keyed by URL; an unknown URL reports cancelled=false, not an error.
func (h *DownloadHandler) CancelDownload(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cancelled := h.jobMgr.Cancel(req.URL)
	c.JSON(http.StatusOK, gin.H{"cancelled": cancelled})
}

// GetJob handles GET /api/v1/downloads/:id
func (h *DownloadHandler) GetJob(c *gin.Context) {
	id := c.Param("id")

	job, err := h.jobMgr.GetJob(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobs handles GET /api/v1/downloads
func (h *DownloadHandler) ListJobs(c *gin.Context) {
	filters := make(map[string]interface{})

	if state := c.Query("state"); state != "" {
		filters["state"] = state
	}

	jobs, err := h.jobMgr.ListJobs(filters)
	if err != nil {
		h.logger.Error("Failed to list jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, jobs)
}

// GetStats handles GET /api/v1/downloads/stats
func (h *DownloadHandler) GetStats(c *gin.Context) {
	stats, err := h.jobMgr.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
