package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/service"
	"github.com/xuri/excelize/v2"
)

type InventoryHandler struct {
	svc    *service.InventoryService
	logSvc *service.LogService
}

func NewInventoryHandler(svc *service.InventoryService, logSvc *service.LogService) *InventoryHandler {
	return &InventoryHandler{svc: svc, logSvc: logSvc}
}

func (h *InventoryHandler) ListLevels(c *gin.Context) {
	levels, err := h.svc.ListLevels(c.Request.Context())
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, levels)
}

func (h *InventoryHandler) GetStock(c *gin.Context) {
	stock, err := h.svc.GetStock(c.Request.Context(), c.Param("materialId"))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, gin.H{"material_id": c.Param("materialId"), "on_hand": stock})
}

// StockLimit 编辑界面可选上限（虚拟库存）。台账本身不使用这个值。
func (h *InventoryHandler) StockLimit(c *gin.Context) {
	limit, err := h.logSvc.StockLimit(c.Request.Context(), c.Param("materialId"), c.Query("log_id"))
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, gin.H{"material_id": c.Param("materialId"), "limit": limit})
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	params := repository.MovementListParams{
		MaterialID: c.Query("material_id"),
		BatchID:    c.Query("batch_id"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 50),
	}
	movements, total, err := h.svc.ListMovements(c.Request.Context(), params)
	if err != nil {
		DomainError(c, err)
		return
	}
	Success(c, gin.H{"items": movements, "total": total})
}

type adjustRequest struct {
	MaterialID string  `json:"material_id" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required"`
	Reason     string  `json:"reason" binding:"required"`
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, 40000, err.Error())
		return
	}
	m, err := h.svc.Adjust(c.Request.Context(), req.MaterialID, req.Quantity, req.Reason, actorFrom(c))
	if err != nil {
		DomainError(c, err)
		return
	}
	Created(c, m)
}

// ExportMovements 库存流水导出 XLSX
func (h *InventoryHandler) ExportMovements(c *gin.Context) {
	movements, _, err := h.svc.ListMovements(c.Request.Context(), repository.MovementListParams{
		MaterialID: c.Query("material_id"),
		BatchID:    c.Query("batch_id"),
	})
	if err != nil {
		DomainError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Movements"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Material", "Quantity", "Type", "Reason", "Batch", "Log", "By", "At"}
	for i, hd := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, hd)
	}
	for row, m := range movements {
		values := []interface{}{m.ID, m.MaterialID, m.Quantity, m.Type, m.Reason, m.BatchID, m.LogID, m.CreatedBy, m.CreatedAt.Format(time.RFC3339)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("movements_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		Error(c, 50001, "export failed: "+err.Error())
	}
}
