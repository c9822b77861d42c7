package entity

import (
	"time"
)

// DeliveryStatus 配送单状态
const (
	DeliveryStatusPending   = "PENDING"
	DeliveryStatusConfirmed = "CONFIRMED"
	DeliveryStatusInTransit = "IN_TRANSIT"
	DeliveryStatusDelivered = "DELIVERED"
	DeliveryStatusCancelled = "CANCELLED"
)

// DeliveryOrder 下游配送单。同一 (batch, flush) 至多一张活动单
// （PENDING 或 CONFIRMED），由触发器的幂等检查保证。
type DeliveryOrder struct {
	ID               string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BatchID          string     `json:"batch_id" gorm:"size:32;not null;index:idx_delivery_batch_flush"`
	FlushNumber      int        `json:"flush_number" gorm:"not null;index:idx_delivery_batch_flush"`
	Status           string     `json:"status" gorm:"size:16;not null;default:PENDING"`
	EstimatedYieldKG float64    `json:"estimated_yield_kg" gorm:"type:decimal(10,3)"`
	DeliveryDate     time.Time  `json:"delivery_date"`
	NotifyMessage    string     `json:"notify_message" gorm:"type:text"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at" gorm:"index"`
}

func (DeliveryOrder) TableName() string {
	return "delivery_orders"
}

// ActiveDeliveryStatuses 视为“活动”的状态集合
var ActiveDeliveryStatuses = []string{DeliveryStatusPending, DeliveryStatusConfirmed}
