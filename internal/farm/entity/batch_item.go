package entity

import (
	"time"
)

// ItemStatus 单个菌包的状态，闭合枚举
type ItemStatus string

const (
	ItemInoculated         ItemStatus = "INOCULATED"
	ItemIncubating         ItemStatus = "INCUBATING"
	ItemReadyToFruit       ItemStatus = "READY_TO_FRUIT"
	ItemFruitingPinning    ItemStatus = "FRUITING_PINNING"
	ItemFruitingMaturing   ItemStatus = "FRUITING_MATURING"
	ItemFruitingReady      ItemStatus = "FRUITING_READY"
	ItemFruitingOvermature ItemStatus = "FRUITING_OVERMATURE"
	ItemContaminated       ItemStatus = "CONTAMINATED"
	ItemDisposed           ItemStatus = "DISPOSED"
	ItemFailed             ItemStatus = "FAILED"
)

// itemStatusOrder 正常生产路径上的顺序
var itemStatusOrder = map[ItemStatus]int{
	ItemInoculated:         0,
	ItemIncubating:         1,
	ItemReadyToFruit:       2,
	ItemFruitingPinning:    3,
	ItemFruitingMaturing:   4,
	ItemFruitingReady:      5,
	ItemFruitingOvermature: 6,
}

// Valid reports whether s is a member of the closed enumeration.
func (s ItemStatus) Valid() bool {
	if _, ok := itemStatusOrder[s]; ok {
		return true
	}
	return s.IsException()
}

// IsException 异常态：批量（全批次）操作不得触碰
func (s ItemStatus) IsException() bool {
	switch s {
	case ItemContaminated, ItemDisposed, ItemFailed:
		return true
	}
	return false
}

// IsFruitingPhase 出菇阶段（含 READY_TO_FRUIT），全批次状态推进只作用于这些状态
func (s ItemStatus) IsFruitingPhase() bool {
	switch s {
	case ItemReadyToFruit, ItemFruitingPinning, ItemFruitingMaturing,
		ItemFruitingReady, ItemFruitingOvermature:
		return true
	}
	return false
}

// CanTransition 集中定义的状态迁移表。
// 正常路径允许向前或向后（出菇期复壮/翻潮会回退），异常态从任何非异常态可达，
// 异常态本身只能由显式勾选的批量操作覆盖，不在此表放行。
func CanTransition(from, to ItemStatus) bool {
	if from.IsException() {
		return false
	}
	if to.IsException() {
		return true
	}
	_, okFrom := itemStatusOrder[from]
	_, okTo := itemStatusOrder[to]
	return okFrom && okTo
}

// BatchItem 单个菌包
type BatchItem struct {
	ID        string     `json:"id" gorm:"primaryKey;size:40"`
	BatchID   string     `json:"batch_id" gorm:"size:32;not null;index"`
	Seq       int        `json:"seq" gorm:"not null"`
	Status    ItemStatus `json:"status" gorm:"size:24;not null;default:INOCULATED;index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (BatchItem) TableName() string {
	return "batch_items"
}
