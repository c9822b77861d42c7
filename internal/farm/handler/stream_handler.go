package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/events"
)

// StreamHandler SSE：把事件总线上的变更推给已连接的 UI
type StreamHandler struct {
	bus *events.Bus
}

func NewStreamHandler(bus *events.Bus) *StreamHandler {
	return &StreamHandler{bus: bus}
}

func (h *StreamHandler) Stream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	id := uuid.New().String()
	sub := h.bus.Subscribe(id)
	defer h.bus.Unsubscribe(id)

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return false
			}
			c.SSEvent(string(event.Kind), event.Data())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
