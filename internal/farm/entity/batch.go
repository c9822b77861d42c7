package entity

import (
	"time"
)

// BatchStatus 批次整体状态，其中前四个由成熟度评估函数产生，
// Over Mature 仅由操作员手工设置，Harvested/Completed 由采收流程推进。
const (
	BatchStatusGrowing     = "Growing"
	BatchStatusApproaching = "Approaching Maturity"
	BatchStatusReady       = "Ready to Harvest"
	BatchStatusOverMature  = "Over Mature"
	BatchStatusHarvested   = "Harvested"
	BatchStatusCompleted   = "Completed"
)

// Batch 生产批次
type Batch struct {
	ID                     string     `json:"id" gorm:"primaryKey;size:32"`
	Species                string     `json:"species" gorm:"size:64;not null"`
	Status                 string     `json:"status" gorm:"size:32;not null;default:Growing"`
	CurrentFlush           int        `json:"current_flush" gorm:"not null;default:1"`
	Location               string     `json:"location" gorm:"size:64"`
	BaselineCapDiameterCM  float64    `json:"baseline_cap_diameter_cm" gorm:"type:decimal(6,2);default:8.0"`
	BaselineMaturationDays int        `json:"baseline_maturation_days" gorm:"default:5"`
	EstAvgWeightPerBlockG  float64    `json:"est_avg_weight_per_block_g" gorm:"type:decimal(8,2);default:0"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
	DeletedAt              *time.Time `json:"deleted_at" gorm:"index"`
}

func (Batch) TableName() string {
	return "batches"
}
