package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/service"
)

type ProductionHandler struct {
	svc *service.LogService
}

func NewProductionHandler(svc *service.LogService) *ProductionHandler {
	return &ProductionHandler{svc: svc}
}

// SaveLog 新建或编辑阶段日志（请求体带 id 即编辑）
func (h *ProductionHandler) SaveLog(c *gin.Context) {
	var log entity.ProductionLog
	if err := c.ShouldBindJSON(&log); err != nil {
		Error(c, 40000, err.Error())
		return
	}
	creating := log.ID == ""
	saved, err := h.svc.SaveLog(c.Request.Context(), &log, actorFrom(c))
	if err != nil {
		DomainError(c, err)
		return
	}
	if creating {
		Created(c, saved)
		return
	}
	Success(c, saved)
}

func (h *ProductionHandler) ListLogs(c *gin.Context) {
	logs, err := h.svc.ListLogs(c.Request.Context(), c.Param("id"), entity.Stage(c.Query("stage")))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, logs)
}

func (h *ProductionHandler) RecordObservation(c *gin.Context) {
	var req service.ObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, 40000, err.Error())
		return
	}
	result, err := h.svc.RecordObservation(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		DomainError(c, err)
		return
	}
	Created(c, result)
}

func (h *ProductionHandler) ListObservations(c *gin.Context) {
	obs, err := h.svc.ListObservations(c.Request.Context(), c.Param("id"), queryInt(c, "flush", 0))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, obs)
}

func (h *ProductionHandler) RecordIncubationUpdate(c *gin.Context) {
	var req service.IncubationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, 40000, err.Error())
		return
	}
	updated, snap, err := h.svc.RecordIncubationUpdate(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		DomainError(c, err)
		return
	}
	Created(c, gin.H{"updated": updated, "snapshot": snap})
}

func (h *ProductionHandler) ListSnapshots(c *gin.Context) {
	snaps, err := h.svc.ListSnapshots(c.Request.Context(), c.Param("id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, snaps)
}

func (h *ProductionHandler) RecordHarvest(c *gin.Context) {
	var req service.HarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, 40000, err.Error())
		return
	}
	result, err := h.svc.RecordHarvest(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		DomainError(c, err)
		return
	}
	Created(c, result)
}
