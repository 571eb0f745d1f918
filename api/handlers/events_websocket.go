package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vscraper/vscraper-go/internal/events"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Local single-user application
	},
}

const pingInterval = 30 * time.Second

// EventsHandler streams core events to WebSocket clients. Each
// connection holds exactly one emitter subscription, acquired on
// upgrade and released on disconnect.
type EventsHandler struct {
	emitter *events.Emitter
	logger  *zap.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(emitter *events.Emitter, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		emitter: emitter,
		logger:  logger,
	}
}

// HandleWebSocket handles GET /api/v1/events. The optional topics query
// parameter narrows the subscription; default is every topic.
func (h *EventsHandler) HandleWebSocket(c *gin.Context) {
	topics := events.Topics()
	if raw := c.Query("topics"); raw != "" {
		topics = strings.Split(raw, ",")
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := h.emitter.Subscribe(topics...)
	defer sub.Close()

	h.logger.Info("Event subscriber connected",
		zap.Strings("topics", topics),
		zap.String("remote_addr", c.Request.RemoteAddr))

	// Reader goroutine: consumes control frames and signals disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Debug("Failed to send event", zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
