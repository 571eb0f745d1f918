package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vscraper/vscraper-go/internal/app"
	"github.com/vscraper/vscraper-go/internal/domain"
	"go.uber.org/zap"
)

// ConfigHandler handles configuration HTTP requests
type ConfigHandler struct {
	store  *app.ConfigStore
	logger *zap.Logger
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(store *app.ConfigStore, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		store:  store,
		logger: logger,
	}
}

// GetConfig handles GET /api/v1/config. Never fails: the store falls
// back to defaults when the persisted record is unreadable.
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	config := h.store.Get()
	c.JSON(http.StatusOK, config)
}

// UpdateConfig handles PUT /api/v1/config. The response reports whether
// persistence succeeded; the in-memory record is updated either way.
func (h *ConfigHandler) UpdateConfig(c *gin.Context) {
	var config domain.Config
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Update(config); err != nil {
		h.logger.Warn("Configuration update not persisted", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HomepagePreferenceRequest is the body for PUT /api/v1/config/homepage
type HomepagePreferenceRequest struct {
	SkipHomepage *bool `json:"skip_homepage" binding:"required"`
}

// SetHomepagePreference handles PUT /api/v1/config/homepage for callers
// that carry only the boolean flag.
func (h *ConfigHandler) SetHomepagePreference(c *gin.Context) {
	var req HomepagePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetSkipHomepage(*req.SkipHomepage); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
