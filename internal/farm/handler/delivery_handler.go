package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/service"
)

type DeliveryHandler struct {
	svc *service.DeliveryService
}

func NewDeliveryHandler(svc *service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{svc: svc}
}

func (h *DeliveryHandler) List(c *gin.Context) {
	orders, err := h.svc.List(c.Request.Context(), c.Query("batch_id"), c.Query("status"))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, orders)
}

func (h *DeliveryHandler) Confirm(c *gin.Context) {
	order, err := h.svc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, order)
}

func (h *DeliveryHandler) Cancel(c *gin.Context) {
	order, err := h.svc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, order)
}
