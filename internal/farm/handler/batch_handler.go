package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/service"
)

type BatchHandler struct {
	batches *repository.BatchRepository
	items   *service.ItemService
}

func NewBatchHandler(batches *repository.BatchRepository, items *service.ItemService) *BatchHandler {
	return &BatchHandler{batches: batches, items: items}
}

func (h *BatchHandler) List(c *gin.Context) {
	batches, err := h.batches.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, batches)
}

func (h *BatchHandler) Get(c *gin.Context) {
	b, err := h.batches.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, b)
}

type createBatchRequest struct {
	ID                     string  `json:"id" binding:"required"`
	Species                string  `json:"species" binding:"required"`
	Location               string  `json:"location"`
	BaselineCapDiameterCM  float64 `json:"baseline_cap_diameter_cm"`
	BaselineMaturationDays int     `json:"baseline_maturation_days"`
	EstAvgWeightPerBlockG  float64 `json:"est_avg_weight_per_block_g"`
}

func (h *BatchHandler) Create(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, 40000, err.Error())
		return
	}
	b := &entity.Batch{
		ID:                     req.ID,
		Species:                req.Species,
		Status:                 entity.BatchStatusGrowing,
		CurrentFlush:           1,
		Location:               req.Location,
		BaselineCapDiameterCM:  req.BaselineCapDiameterCM,
		BaselineMaturationDays: req.BaselineMaturationDays,
		EstAvgWeightPerBlockG:  req.EstAvgWeightPerBlockG,
	}
	if err := h.batches.Create(c.Request.Context(), b); err != nil {
		DomainError(c, err)
		return
	}
	Created(c, b)
}

// SetStatus 批次状态的手工覆盖入口（Over Mature 只能从这里设置）
func (h *BatchHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, 40000, err.Error())
		return
	}
	b, err := h.batches.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	b.Status = req.Status
	if err := h.batches.Update(c.Request.Context(), b); err != nil {
		DomainError(c, err)
		return
	}
	Success(c, b)
}

func (h *BatchHandler) ListItems(c *gin.Context) {
	items, err := h.items.ListByBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, items)
}

type bulkStatusRequest struct {
	ItemIDs []string          `json:"item_ids" binding:"required"`
	Status  entity.ItemStatus `json:"status" binding:"required"`
}

// BulkSetItems 显式勾选的批量改状态（养菌分拣、出菇标记失败等）
func (h *BatchHandler) BulkSetItems(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, 40000, err.Error())
		return
	}
	updated, err := h.items.BulkSetStatus(c.Request.Context(), req.ItemIDs, req.Status)
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, gin.H{"updated": updated})
}
