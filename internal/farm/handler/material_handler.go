package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/service"
)

type MaterialHandler struct {
	svc *service.MaterialService
}

func NewMaterialHandler(svc *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

func (h *MaterialHandler) List(c *gin.Context) {
	materials, err := h.svc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, materials)
}

func (h *MaterialHandler) Get(c *gin.Context) {
	m, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, m)
}

type createMaterialRequest struct {
	ID       string `json:"id" binding:"required"`
	Category string `json:"category" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Unit     string `json:"unit"`
}

func (h *MaterialHandler) Create(c *gin.Context) {
	var req createMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, 40000, err.Error())
		return
	}
	unit := req.Unit
	if unit == "" {
		unit = "g"
	}
	m := &entity.Material{ID: req.ID, Category: req.Category, Name: req.Name, Unit: unit}
	if err := h.svc.Create(c.Request.Context(), m); err != nil {
		DomainError(c, err)
		return
	}
	Created(c, m)
}
