package entity

import (
	"time"
)

// MovementType 库存变动类型
const (
	MovementTypeConsumption = "CONSUMPTION" // 生产消耗
	MovementTypeAdjustment  = "ADJUSTMENT"  // 库存调整
)

// InventoryLevel 当前库存（每种物料一行，随变动维护）
type InventoryLevel struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MaterialID string    `json:"material_id" gorm:"size:32;not null;uniqueIndex"`
	OnHand     float64   `json:"on_hand" gorm:"type:decimal(12,4);not null;default:0"`
	UpdatedAt  time.Time `json:"updated_at"`

	Material *Material `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
}

func (InventoryLevel) TableName() string {
	return "inventory_levels"
}

// InventoryMovement 库存流水，只追加，从不修改
type InventoryMovement struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	MaterialID string    `json:"material_id" gorm:"size:32;not null;index"`
	Quantity   float64   `json:"quantity" gorm:"type:decimal(12,4);not null"` // 正=入，负=出
	Type       string    `json:"type" gorm:"size:20;not null"`
	Reason     string    `json:"reason" gorm:"size:128"`
	BatchID    string    `json:"batch_id" gorm:"size:32;index"`
	LogID      string    `json:"log_id" gorm:"size:36;index"`
	CreatedBy  string    `json:"created_by" gorm:"size:64"`
	CreatedAt  time.Time `json:"created_at"`
}

func (InventoryMovement) TableName() string {
	return "inventory_movements"
}
