package service

import (
	"fmt"
	"math"
	"time"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
)

// 评分权重与阈值。三项上限合计 90 而非 100，是有意保留的余量。
const (
	timeScoreCap = 30.0
	sizeScoreCap = 40.0

	defaultMaturationDays = 5
	defaultTargetDiameter = 8.0

	indexReadyThreshold       = 81
	indexApproachingThreshold = 61
)

// SampleAggregate 抽样汇总
type SampleAggregate struct {
	AvgDiameterCM  float64         `json:"avg_diameter_cm"`
	DominantShape  entity.CapShape `json:"dominant_shape"`
	FlatPercentage float64         `json:"flat_percentage"`
}

// AggregateSampleData 汇总抽样：直径均值（两位小数）、形态众数、平盖占比。
// 众数并列时按 UPTURNED > FLAT > CONVEX 优先。空输入返回 {0, CONVEX, 0}。
func AggregateSampleData(samples []entity.Sample) SampleAggregate {
	if len(samples) == 0 {
		return SampleAggregate{DominantShape: entity.ShapeConvex}
	}

	var sum float64
	counts := map[entity.CapShape]int{}
	for _, s := range samples {
		sum += s.DiameterCM
		counts[s.Shape]++
	}

	dominant := entity.ShapeConvex
	best := counts[entity.ShapeConvex]
	// 并列时后比较的优先级更高
	for _, shape := range []entity.CapShape{entity.ShapeFlat, entity.ShapeUpturned} {
		if counts[shape] >= best && counts[shape] > 0 {
			dominant = shape
			best = counts[shape]
		}
	}

	n := float64(len(samples))
	return SampleAggregate{
		AvgDiameterCM:  math.Round(sum/n*100) / 100,
		DominantShape:  dominant,
		FlatPercentage: 100 * float64(counts[entity.ShapeFlat]) / n,
	}
}

// MaturityInput 单次评分输入
type MaturityInput struct {
	PinningDate    *time.Time
	ObservedAt     time.Time
	AvgDiameterCM  float64
	FlatPercentage float64
}

// MaturityBaseline 批次基线参数，非正值回落到默认
type MaturityBaseline struct {
	TargetMaturationDays int
	TargetDiameterCM     float64
}

// CalculateMaturityIndex 三项加权求和取整：
// 时间分（≤30）按出针起算的整天数对目标天数的比例，
// 尺寸分（≤40）按均径对目标径的比例，
// 平盖分按比例分桶（<0.2→0，0.2~0.6→10，>0.6→20）。
func CalculateMaturityIndex(in MaturityInput, base MaturityBaseline) int {
	targetDays := base.TargetMaturationDays
	if targetDays <= 0 {
		targetDays = defaultMaturationDays
	}
	targetDiameter := base.TargetDiameterCM
	if targetDiameter <= 0 {
		targetDiameter = defaultTargetDiameter
	}

	var timeScore float64
	if in.PinningDate != nil {
		daysElapsed := math.Ceil(in.ObservedAt.Sub(*in.PinningDate).Hours() / 24)
		timeScore = math.Min(timeScoreCap, timeScoreCap*daysElapsed/float64(targetDays))
	}

	sizeScore := math.Min(sizeScoreCap, sizeScoreCap*in.AvgDiameterCM/targetDiameter)

	var flatScore float64
	ratio := in.FlatPercentage / 100
	switch {
	case ratio > 0.6:
		flatScore = 20
	case ratio >= 0.2:
		flatScore = 10
	}

	return int(math.Round(timeScore + sizeScore + flatScore))
}

// EvaluateBatchStatus 由成熟度指数给出建议的批次状态。
// Over Mature 不在此产生，只能由操作员手工选择。
func EvaluateBatchStatus(index int, flatPercentage float64, pinningStarted bool) string {
	if !pinningStarted {
		return entity.BatchStatusGrowing
	}
	switch {
	case index >= indexReadyThreshold:
		return entity.BatchStatusReady
	case index >= indexApproachingThreshold:
		return entity.BatchStatusApproaching
	default:
		return entity.BatchStatusGrowing
	}
}

// EvaluateHarvestStatus 按指数决定是否产生提醒。
// ≥81 推送车间立即采收；61~80 邮件通知下游丙村；其余不提醒。
func EvaluateHarvestStatus(index int, flatPercentage float64, batchID string) *entity.Alert {
	switch {
	case index >= indexReadyThreshold:
		return &entity.Alert{
			BatchID:   batchID,
			Level:     entity.AlertLevelWarning,
			Recipient: entity.AlertRecipientWorkers,
			Channel:   entity.AlertChannelPush,
			Message: fmt.Sprintf("Batch %s reached maturity index %d (flat %.0f%%): harvest immediately",
				batchID, index, flatPercentage),
		}
	case index >= indexApproachingThreshold:
		return &entity.Alert{
			BatchID:   batchID,
			Level:     entity.AlertLevelInfo,
			Recipient: entity.AlertRecipientVillageC,
			Channel:   entity.AlertChannelEmail,
			Message: fmt.Sprintf("Batch %s approaching maturity (index %d): prepare for delivery",
				batchID, index),
		}
	}
	return nil
}
