package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/conceptgraph-backend/internal/pkg/logger"
	"github.com/yungbote/conceptgraph-backend/internal/sse"
)

type EventsHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewEventsHandler(baseLog *logger.Logger, hub *sse.Hub) *EventsHandler {
	return &EventsHandler{
		log: baseLog.With("handler", "EventsHandler"),
		hub: hub,
	}
}

// GET /api/events
// Streams review lifecycle events for the authenticated user.
func (h *EventsHandler) Stream(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	client := h.hub.Subscribe(userID)
	defer h.hub.Unsubscribe(client)

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case msg, open := <-client.Outbound:
			if !open {
				return false
			}
			data, err := json.Marshal(msg.Data)
			if err != nil {
				h.log.Warn("failed to encode event payload", "event", msg.Event, "error", err)
				return true
			}
			c.SSEvent(string(msg.Event), string(data))
			return true
		}
	})
}
