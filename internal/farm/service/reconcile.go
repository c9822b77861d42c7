package service

import (
	"fmt"
	"sort"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
)

// logField 阶段日志上的一对 (数量字段, 物料字段)
type logField struct {
	label    string
	qty      func(*entity.ProductionLog) float64
	material func(*entity.ProductionLog) string
}

// stageSchemas 固定的阶段消耗 schema：每个阶段哪些数量字段对应哪个物料字段。
// 养菌/出菇/采收不消耗物料，因此不在表内。
var stageSchemas = map[entity.Stage][]logField{
	entity.StageCulture: {
		{"culture", func(l *entity.ProductionLog) float64 { return l.CultureQty }, func(l *entity.ProductionLog) string { return l.CultureMaterialID }},
		{"dish", func(l *entity.ProductionLog) float64 { return l.DishQty }, func(l *entity.ProductionLog) string { return l.DishMaterialID }},
		{"agar", func(l *entity.ProductionLog) float64 { return l.AgarQty }, func(l *entity.ProductionLog) string { return l.AgarMaterialID }},
	},
	entity.StageSpawn: {
		{"grain", func(l *entity.ProductionLog) float64 { return l.GrainQty }, func(l *entity.ProductionLog) string { return l.GrainMaterialID }},
		{"spawn_source", func(l *entity.ProductionLog) float64 { return l.SpawnSourceQty }, func(l *entity.ProductionLog) string { return l.SpawnSourceMaterialID }},
	},
	entity.StageSubstrate: {
		{"bulk", func(l *entity.ProductionLog) float64 { return l.BulkQty }, func(l *entity.ProductionLog) string { return l.BulkMaterialID }},
		{"supplement", func(l *entity.ProductionLog) float64 { return l.SupplementQty }, func(l *entity.ProductionLog) string { return l.SupplementMaterialID }},
	},
	entity.StageInoculation: {
		{"spawn", func(l *entity.ProductionLog) float64 { return l.SpawnQty }, func(l *entity.ProductionLog) string { return l.SpawnMaterialID }},
		{"bag", func(l *entity.ProductionLog) float64 { return l.BagQty }, func(l *entity.ProductionLog) string { return l.BagMaterialID }},
	},
}

// ConsumptionSet 按 schema 抽取日志的 {materialID: qty} 消耗集。
// 未选物料的数量字段静默排除（视为“尚未填写”，不扣减也不报错）。
func ConsumptionSet(stage entity.Stage, log *entity.ProductionLog) map[string]float64 {
	set := make(map[string]float64)
	if log == nil {
		return set
	}
	for _, f := range stageSchemas[stage] {
		mat := f.material(log)
		qty := f.qty(log)
		if mat == "" || qty <= 0 {
			continue
		}
		set[mat] += qty
	}
	return set
}

// PlanReconciliation 计算一次保存所需的最小 revert/consume 变动集。
// 同一物料新旧数量相等时两个方向都不生成，省掉一来一回。
// 返回的变动未填 BatchID/LogID，由调用方补齐后交给台账原子提交。
func PlanReconciliation(stage entity.Stage, oldLog, newLog *entity.ProductionLog) ([]StockDelta, error) {
	if _, ok := stageSchemas[stage]; !ok {
		return nil, fmt.Errorf("stage %s does not consume materials", stage)
	}

	oldSet := ConsumptionSet(stage, oldLog)
	newSet := ConsumptionSet(stage, newLog)
	editing := oldLog != nil

	materials := make([]string, 0, len(oldSet)+len(newSet))
	seen := make(map[string]bool)
	for id := range oldSet {
		materials = append(materials, id)
		seen[id] = true
	}
	for id := range newSet {
		if !seen[id] {
			materials = append(materials, id)
		}
	}
	sort.Strings(materials)

	var deltas []StockDelta
	for _, id := range materials {
		oldQty := oldSet[id]
		newQty := newSet[id]
		if oldQty == newQty {
			continue
		}
		if oldQty > 0 {
			deltas = append(deltas, StockDelta{
				MaterialID: id,
				Quantity:   oldQty,
				Type:       entity.MovementTypeConsumption,
				Reason:     "Edit Revert",
			})
		}
		if newQty > 0 {
			reason := fmt.Sprintf("%s consumption", stage)
			if editing {
				reason = "Edit Apply"
			}
			deltas = append(deltas, StockDelta{
				MaterialID: id,
				Quantity:   -newQty,
				Type:       entity.MovementTypeConsumption,
				Reason:     reason,
			})
		}
	}
	return deltas, nil
}

// VirtualStock 编辑中某物料可选的上限：物理库存加上被编辑日志自己已占用的量。
// 用户是在重新分配自己已预留的份额，不是从公共池里新取。
func VirtualStock(physical, originalQty float64) float64 {
	return physical + originalQty
}

// OriginalQty 该日志当前为某物料预留的数量
func OriginalQty(stage entity.Stage, log *entity.ProductionLog, materialID string) float64 {
	return ConsumptionSet(stage, log)[materialID]
}
