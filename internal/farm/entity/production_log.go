package entity

import (
	"time"
)

// Stage 生产阶段
type Stage string

const (
	StageCulture     Stage = "CULTURE"
	StageSpawn       Stage = "SPAWN"
	StageSubstrate   Stage = "SUBSTRATE"
	StageInoculation Stage = "INOCULATION"
	StageIncubation  Stage = "INCUBATION"
	StageFruiting    Stage = "FRUITING"
	StageHarvest     Stage = "HARVEST"
)

// StageLogKeys 阶段 → 日志集合键，固定 7 项
var StageLogKeys = map[Stage]string{
	StageCulture:     "culture_logs",
	StageSpawn:       "spawn_logs",
	StageSubstrate:   "substrate_logs",
	StageInoculation: "inoculation_logs",
	StageIncubation:  "incubation_logs",
	StageFruiting:    "fruiting_observations",
	StageHarvest:     "harvest_logs",
}

// Editable 接种前各阶段日志可编辑，养菌快照/出菇观察/采收记录一经写入不可修改
func (s Stage) Editable() bool {
	switch s {
	case StageCulture, StageSpawn, StageSubstrate, StageInoculation:
		return true
	}
	return false
}

// ProductionLog 阶段日志。一张宽表承载各阶段的数量/物料字段对，
// 每个阶段实际使用的字段由 service 层的固定 schema 决定。
type ProductionLog struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BatchID     string    `json:"batch_id" gorm:"size:32;not null;index"`
	Stage       Stage     `json:"stage" gorm:"size:16;not null;index"`
	DateStarted time.Time `json:"date_started" gorm:"not null"`

	// CULTURE
	CultureQty        float64 `json:"culture_qty" gorm:"type:decimal(12,4);default:0"`
	CultureMaterialID string  `json:"culture_material_id" gorm:"size:32"`
	DishQty           float64 `json:"dish_qty" gorm:"type:decimal(12,4);default:0"`
	DishMaterialID    string  `json:"dish_material_id" gorm:"size:32"`
	AgarQty           float64 `json:"agar_qty" gorm:"type:decimal(12,4);default:0"`
	AgarMaterialID    string  `json:"agar_material_id" gorm:"size:32"`

	// SPAWN
	GrainQty             float64 `json:"grain_qty" gorm:"type:decimal(12,4);default:0"`
	GrainMaterialID      string  `json:"grain_material_id" gorm:"size:32"`
	SpawnSourceQty       float64 `json:"spawn_source_qty" gorm:"type:decimal(12,4);default:0"`
	SpawnSourceMaterialID string `json:"spawn_source_material_id" gorm:"size:32"`

	// SUBSTRATE
	BulkQty              float64 `json:"bulk_qty" gorm:"type:decimal(12,4);default:0"`
	BulkMaterialID       string  `json:"bulk_material_id" gorm:"size:32"`
	SupplementQty        float64 `json:"supplement_qty" gorm:"type:decimal(12,4);default:0"`
	SupplementMaterialID string  `json:"supplement_material_id" gorm:"size:32"`

	// INOCULATION
	SpawnQty        float64 `json:"spawn_qty" gorm:"type:decimal(12,4);default:0"`
	SpawnMaterialID string  `json:"spawn_material_id" gorm:"size:32"`
	BagQty          float64 `json:"bag_qty" gorm:"type:decimal(12,4);default:0"`
	BagMaterialID   string  `json:"bag_material_id" gorm:"size:32"`
	PackedBlocks    int     `json:"packed_blocks" gorm:"default:0"`

	// HARVEST
	FlushNumber int     `json:"flush_number" gorm:"default:0"`
	GradeAQtyG  float64 `json:"grade_a_qty_g" gorm:"type:decimal(12,2);default:0"`
	GradeBQtyG  float64 `json:"grade_b_qty_g" gorm:"type:decimal(12,2);default:0"`
	WasteQtyG   float64 `json:"waste_qty_g" gorm:"type:decimal(12,2);default:0"`
	HarvestAction string `json:"harvest_action" gorm:"size:16"`

	Notes     string    `json:"notes" gorm:"type:text"`
	CreatedBy string    `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProductionLog) TableName() string {
	return "production_logs"
}

// StatusSnapshot 养菌批量更新后的状态分布快照，只追加
type StatusSnapshot struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BatchID    string    `json:"batch_id" gorm:"size:32;not null;index"`
	Date       time.Time `json:"date" gorm:"not null"`
	CountsJSON string    `json:"counts" gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time `json:"created_at"`
}

func (StatusSnapshot) TableName() string {
	return "status_snapshots"
}
