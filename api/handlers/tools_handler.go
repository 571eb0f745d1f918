package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vscraper/vscraper-go/internal/app"
	"go.uber.org/zap"
)

// ToolsHandler handles external-tool installation requests
type ToolsHandler struct {
	installer *app.Installer
	logger    *zap.Logger
}

// NewToolsHandler creates a new tools handler
func NewToolsHandler(installer *app.Installer, logger *zap.Logger) *ToolsHandler {
	return &ToolsHandler{
		installer: installer,
		logger:    logger,
	}
}

// InstallAll handles POST /api/v1/tools/install. Fire-and-forget: the
// response only acknowledges the request, outcomes arrive on the
// install event topics.
func (h *ToolsHandler) InstallAll(c *gin.Context) {
	h.installer.InstallAll(context.Background())
	c.JSON(http.StatusAccepted, gin.H{"message": "installation started"})
}

// GetStates handles GET /api/v1/tools
func (h *ToolsHandler) GetStates(c *gin.Context) {
	c.JSON(http.StatusOK, h.installer.States())
}
