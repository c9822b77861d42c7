package service

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/events"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
	"go.uber.org/zap"
)

// 领域错误。所有库存校验都发生在任何写入之前，校验失败即整个操作终止。
var (
	ErrNegativeYield  = errors.New("harvest grade quantities cannot be negative")
	ErrNoItemsMatched = errors.New("no items matched the given ids")
	ErrInvalidStatus  = errors.New("invalid item status")
	ErrLogImmutable   = errors.New("logs for this stage cannot be edited once written")
)

// InsufficientStockError 某物料预计库存为负，拒绝整个保存
type InsufficientStockError struct {
	MaterialID string
	Requested  float64
	Available  float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for material %s: requested %.4f, available %.4f",
		e.MaterialID, e.Requested, e.Available)
}

// Services 服务集合
type Services struct {
	Material  *MaterialService
	Inventory *InventoryService
	Item      *ItemService
	Delivery  *DeliveryService
	Log       *LogService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, bus *events.Bus, logger *zap.Logger) *Services {
	inventory := NewInventoryService(repos.Inventory, logger)
	item := NewItemService(repos.Item, logger)
	delivery := NewDeliveryService(repos.Delivery, bus, logger)

	return &Services{
		Material:  NewMaterialService(repos.Material, rdb),
		Inventory: inventory,
		Item:      item,
		Delivery:  delivery,
		Log:       NewLogService(repos, inventory, item, delivery, bus, logger),
	}
}
