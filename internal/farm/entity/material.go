package entity

import (
	"time"
)

// MaterialCategory groups raw materials by the stage that consumes them.
const (
	MaterialCategoryCulture    = "CULTURE"
	MaterialCategorySpawn      = "SPAWN"
	MaterialCategorySubstrate  = "SUBSTRATE"
	MaterialCategoryPackaging  = "PACKAGING"
	MaterialCategoryConsumable = "CONSUMABLE"
)

// Material 原材料主数据
type Material struct {
	ID        string     `json:"id" gorm:"primaryKey;size:32"`
	Category  string     `json:"category" gorm:"size:20;not null;index"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	Unit      string     `json:"unit" gorm:"size:20;not null;default:g"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (Material) TableName() string {
	return "materials"
}
