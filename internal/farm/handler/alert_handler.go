package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
)

type AlertHandler struct {
	alerts   *repository.AlertRepository
	activity *repository.ActivityLogRepository
}

func NewAlertHandler(alerts *repository.AlertRepository, activity *repository.ActivityLogRepository) *AlertHandler {
	return &AlertHandler{alerts: alerts, activity: activity}
}

// ListPending UI 启动时轮询未投递的提醒
func (h *AlertHandler) ListPending(c *gin.Context) {
	alerts, err := h.alerts.ListPending(c.Request.Context())
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, alerts)
}

// Ack 确认后出队
func (h *AlertHandler) Ack(c *gin.Context) {
	n, err := h.alerts.MarkDelivered(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	if n == 0 {
		Error(c, 40401, "alert not found or already delivered")
		return
	}
	Success(c, gin.H{"delivered": true})
}

func (h *AlertHandler) ListActivity(c *gin.Context) {
	logs, err := h.activity.List(c.Request.Context(), queryInt(c, "limit", 100))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, logs)
}
