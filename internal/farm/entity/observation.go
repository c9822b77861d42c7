package entity

import (
	"time"
)

// CapShape 菌盖形态
type CapShape string

const (
	ShapeConvex   CapShape = "CONVEX"
	ShapeFlat     CapShape = "FLAT"
	ShapeUpturned CapShape = "UPTURNED"
)

// Sample 单次抽样测量，评分引擎的输入，不落库
type Sample struct {
	DiameterCM float64  `json:"diameter_cm" binding:"required,gt=0"`
	Shape      CapShape `json:"shape" binding:"required"`
	BlockID    string   `json:"block_id"`
}

// Observation 每日出菇观察的评分结果，一经写入不可修改
type Observation struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BatchID        string     `json:"batch_id" gorm:"size:32;not null;index"`
	Date           time.Time  `json:"date" gorm:"not null"`
	PinningDate    *time.Time `json:"pinning_date"`
	AvgDiameterCM  float64    `json:"avg_diameter_cm" gorm:"type:decimal(6,2)"`
	DominantShape  CapShape   `json:"dominant_shape" gorm:"size:12"`
	FlatPercentage float64    `json:"flat_percentage" gorm:"type:decimal(6,2)"`
	MaturityIndex  int        `json:"maturity_index"`
	AlertLevel     string     `json:"alert_level" gorm:"size:12"`
	FlushNumber    int        `json:"flush_number" gorm:"not null;default:1"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (Observation) TableName() string {
	return "observations"
}
