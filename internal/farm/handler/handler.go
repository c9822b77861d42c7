package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/events"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/service"
)

// Handlers 处理器集合
type Handlers struct {
	Material   *MaterialHandler
	Inventory  *InventoryHandler
	Batch      *BatchHandler
	Production *ProductionHandler
	Delivery   *DeliveryHandler
	Alert      *AlertHandler
	Stream     *StreamHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, repos *repository.Repositories, bus *events.Bus) *Handlers {
	return &Handlers{
		Material:   NewMaterialHandler(svc.Material),
		Inventory:  NewInventoryHandler(svc.Inventory, svc.Log),
		Batch:      NewBatchHandler(repos.Batch, svc.Item),
		Production: NewProductionHandler(svc.Log),
		Delivery:   NewDeliveryHandler(svc.Delivery),
		Alert:      NewAlertHandler(repos.Alert, repos.Activity),
		Stream:     NewStreamHandler(bus),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{Code: 0, Message: "success", Data: data})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{Code: 0, Message: "success", Data: data})
}

// Error 错误响应；code 的前三位即 HTTP 状态码
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{Code: code, Message: message})
}

// DomainError 把领域错误映射到响应码
func DomainError(c *gin.Context, err error) {
	var insufficient *service.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		Error(c, 40901, err.Error())
	case errors.Is(err, service.ErrNegativeYield):
		Error(c, 40001, err.Error())
	case errors.Is(err, service.ErrNoItemsMatched):
		Error(c, 40902, err.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		Error(c, 40002, err.Error())
	case errors.Is(err, service.ErrLogImmutable):
		Error(c, 40003, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		Error(c, 40400, err.Error())
	default:
		Error(c, 50000, err.Error())
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func actorFrom(c *gin.Context) string {
	if name := c.GetString("user_name"); name != "" {
		return name
	}
	if id := c.GetString("user_id"); id != "" {
		return id
	}
	return "system"
}
