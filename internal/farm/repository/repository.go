package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	Material    *MaterialRepository
	Inventory   *InventoryRepository
	Batch       *BatchRepository
	Item        *BatchItemRepository
	Log         *ProductionLogRepository
	Observation *ObservationRepository
	Delivery    *DeliveryOrderRepository
	Alert       *AlertRepository
	Activity    *ActivityLogRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Material:    NewMaterialRepository(db),
		Inventory:   NewInventoryRepository(db),
		Batch:       NewBatchRepository(db),
		Item:        NewBatchItemRepository(db),
		Log:         NewProductionLogRepository(db),
		Observation: NewObservationRepository(db),
		Delivery:    NewDeliveryOrderRepository(db),
		Alert:       NewAlertRepository(db),
		Activity:    NewActivityLogRepository(db),
	}
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
