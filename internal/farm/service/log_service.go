package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/events"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
	"go.uber.org/zap"
)

// LogService 阶段日志工作流：保存时先对账再落库，接种时生成菌包，
// 观察评分后驱动状态机与配送触发器。
type LogService struct {
	repos     *repository.Repositories
	inventory *InventoryService
	items     *ItemService
	delivery  *DeliveryService
	bus       *events.Bus
	logger    *zap.Logger
}

func NewLogService(repos *repository.Repositories, inventory *InventoryService, items *ItemService, delivery *DeliveryService, bus *events.Bus, logger *zap.Logger) *LogService {
	return &LogService{
		repos:     repos,
		inventory: inventory,
		items:     items,
		delivery:  delivery,
		bus:       bus,
		logger:    logger,
	}
}

// SaveLog 新建或编辑一条消耗物料的阶段日志（培养/制种/基质/接种）。
// 库存校验全部通过后才落库；接种且装袋数为正时生成菌包。
func (s *LogService) SaveLog(ctx context.Context, log *entity.ProductionLog, actor string) (*entity.ProductionLog, error) {
	if _, ok := stageSchemas[log.Stage]; !ok {
		return nil, fmt.Errorf("stage %s has its own workflow and cannot be saved as a stage log", log.Stage)
	}
	if _, err := s.repos.Batch.FindByID(ctx, log.BatchID); err != nil {
		return nil, fmt.Errorf("batch %s: %w", log.BatchID, err)
	}

	var old *entity.ProductionLog
	creating := log.ID == ""
	if creating {
		log.ID = uuid.New().String()
		log.CreatedBy = actor
	} else {
		var err error
		old, err = s.repos.Log.FindByID(ctx, log.ID)
		if err != nil {
			return nil, err
		}
		if !old.Stage.Editable() {
			return nil, ErrLogImmutable
		}
		if old.Stage != log.Stage || old.BatchID != log.BatchID {
			return nil, fmt.Errorf("stage and batch of an existing log cannot change")
		}
		log.CreatedBy = old.CreatedBy
		log.CreatedAt = old.CreatedAt
	}

	deltas, err := PlanReconciliation(log.Stage, old, log)
	if err != nil {
		return nil, err
	}
	for i := range deltas {
		deltas[i].BatchID = log.BatchID
		deltas[i].LogID = log.ID
	}
	if len(deltas) > 0 {
		if _, err := s.inventory.ApplyDeltas(ctx, deltas, actor); err != nil {
			return nil, err
		}
	}

	if creating {
		err = s.repos.Log.Create(ctx, log)
	} else {
		err = s.repos.Log.Update(ctx, log)
	}
	if err != nil {
		return nil, err
	}

	if creating && log.Stage == entity.StageInoculation && log.PackedBlocks > 0 {
		if _, err := s.items.GenerateItems(ctx, log.BatchID, log.PackedBlocks); err != nil {
			return nil, fmt.Errorf("generate items: %w", err)
		}
		s.bus.Publish(events.Event{Kind: events.KindItemsGenerated, BatchID: log.BatchID, Payload: log.PackedBlocks})
	}

	s.logActivity(ctx, actor, "log_saved",
		fmt.Sprintf("%s log %s for batch %s", log.Stage, log.ID, log.BatchID))
	s.bus.Publish(events.Event{Kind: events.KindLogSaved, BatchID: log.BatchID, Payload: log})
	return log, nil
}

func (s *LogService) ListLogs(ctx context.Context, batchID string, stage entity.Stage) ([]entity.ProductionLog, error) {
	return s.repos.Log.ListByBatch(ctx, batchID, stage)
}

// StockLimit 编辑界面可选上限：物理库存，编辑已有日志时加上该日志自己的预留量
func (s *LogService) StockLimit(ctx context.Context, materialID, logID string) (float64, error) {
	physical, err := s.inventory.GetStock(ctx, materialID)
	if err != nil {
		return 0, err
	}
	if logID == "" {
		return physical, nil
	}
	log, err := s.repos.Log.FindByID(ctx, logID)
	if err != nil {
		return 0, err
	}
	return VirtualStock(physical, OriginalQty(log.Stage, log, materialID)), nil
}

// ObservationRequest 每日出菇观察
type ObservationRequest struct {
	BatchID     string          `json:"batch_id" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	PinningDate *time.Time      `json:"pinning_date"`
	Samples     []entity.Sample `json:"samples"`
	// TargetStatus 操作员确认后的全批次目标状态，留空则只评分不推进
	TargetStatus entity.ItemStatus `json:"target_status"`
}

// ObservationResult 评分与联动结果
type ObservationResult struct {
	Observation     *entity.Observation   `json:"observation"`
	SuggestedStatus string                `json:"suggested_status"`
	Alert           *entity.Alert         `json:"alert,omitempty"`
	ItemsUpdated    int64                 `json:"items_updated"`
	ItemsSkipped    int64                 `json:"items_skipped"`
	DeliveryOrder   *entity.DeliveryOrder `json:"delivery_order,omitempty"`
}

// RecordObservation 评分 → 建议状态/提醒 → （确认后）全批次推进 → 配送触发。
// 观察记录本身不可变，一次评分写一行。
func (s *LogService) RecordObservation(ctx context.Context, req ObservationRequest, actor string) (*ObservationResult, error) {
	batch, err := s.repos.Batch.FindByID(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}

	pinning := req.PinningDate
	if pinning == nil {
		// 本潮次此前记录过出针则沿用
		if prev, err := s.repos.Observation.LatestPinningDate(ctx, batch.ID, batch.CurrentFlush); err == nil {
			pinning = prev.PinningDate
		}
	}

	agg := AggregateSampleData(req.Samples)
	index := CalculateMaturityIndex(
		MaturityInput{
			PinningDate:    pinning,
			ObservedAt:     req.Date,
			AvgDiameterCM:  agg.AvgDiameterCM,
			FlatPercentage: agg.FlatPercentage,
		},
		MaturityBaseline{
			TargetMaturationDays: batch.BaselineMaturationDays,
			TargetDiameterCM:     batch.BaselineCapDiameterCM,
		},
	)
	suggested := EvaluateBatchStatus(index, agg.FlatPercentage, pinning != nil)

	result := &ObservationResult{SuggestedStatus: suggested}

	if alert := EvaluateHarvestStatus(index, agg.FlatPercentage, batch.ID); alert != nil {
		if err := s.repos.Alert.Create(ctx, alert); err != nil {
			return nil, err
		}
		result.Alert = alert
		s.bus.Publish(events.Event{Kind: events.KindAlertRaised, BatchID: batch.ID, Payload: alert})
	}

	if req.TargetStatus != "" {
		updated, skipped, err := s.items.BatchWideTransition(ctx, batch.ID, req.TargetStatus)
		if err != nil {
			return nil, err
		}
		result.ItemsUpdated = updated
		result.ItemsSkipped = skipped
		s.bus.Publish(events.Event{Kind: events.KindItemsUpdated, BatchID: batch.ID, Payload: req.TargetStatus})

		active, ready, err := s.items.FruitingCounts(ctx, batch.ID)
		if err != nil {
			return nil, err
		}
		order, err := s.delivery.OnBatchTransition(ctx, batch, req.TargetStatus, active, ready, req.Date)
		if err != nil {
			return nil, err
		}
		result.DeliveryOrder = order
	}

	if batch.Status != entity.BatchStatusOverMature { // 手工覆盖不被评分回写
		batch.Status = suggested
		if err := s.repos.Batch.Update(ctx, batch); err != nil {
			return nil, err
		}
	}

	obs := &entity.Observation{
		BatchID:        batch.ID,
		Date:           req.Date,
		PinningDate:    pinning,
		AvgDiameterCM:  agg.AvgDiameterCM,
		DominantShape:  agg.DominantShape,
		FlatPercentage: agg.FlatPercentage,
		MaturityIndex:  index,
		FlushNumber:    batch.CurrentFlush,
	}
	if result.Alert != nil {
		obs.AlertLevel = result.Alert.Level
	}
	if err := s.repos.Observation.Create(ctx, obs); err != nil {
		return nil, err
	}
	result.Observation = obs

	s.logActivity(ctx, actor, "observation_recorded",
		fmt.Sprintf("batch %s flush %d index %d", batch.ID, batch.CurrentFlush, index))
	s.bus.Publish(events.Event{Kind: events.KindObservationDone, BatchID: batch.ID, Payload: obs})
	return result, nil
}

// IncubationRequest 养菌房人工分拣
type IncubationRequest struct {
	BatchID string            `json:"batch_id" binding:"required"`
	Date    time.Time         `json:"date" binding:"required"`
	ItemIDs []string          `json:"item_ids" binding:"required"`
	Status  entity.ItemStatus `json:"status" binding:"required"`
}

// RecordIncubationUpdate 显式勾选批量改状态，随后写一份状态分布快照
func (s *LogService) RecordIncubationUpdate(ctx context.Context, req IncubationRequest, actor string) (int64, *entity.StatusSnapshot, error) {
	if _, err := s.repos.Batch.FindByID(ctx, req.BatchID); err != nil {
		return 0, nil, err
	}
	updated, err := s.items.BulkSetStatus(ctx, req.ItemIDs, req.Status)
	if err != nil {
		return 0, nil, err
	}

	snap, _, err := s.items.SnapshotCounts(ctx, req.BatchID, req.Date)
	if err != nil {
		return updated, nil, err
	}
	if err := s.repos.Log.CreateSnapshot(ctx, snap); err != nil {
		return updated, nil, err
	}

	s.logActivity(ctx, actor, "incubation_updated",
		fmt.Sprintf("batch %s: %d items -> %s", req.BatchID, updated, req.Status))
	s.bus.Publish(events.Event{Kind: events.KindItemsUpdated, BatchID: req.BatchID, Payload: req.Status})
	return updated, snap, nil
}

// HarvestRequest 采收落账
type HarvestRequest struct {
	BatchID    string    `json:"batch_id" binding:"required"`
	Date       time.Time `json:"date" binding:"required"`
	GradeAQtyG float64   `json:"grade_a_qty_g"`
	GradeBQtyG float64   `json:"grade_b_qty_g"`
	WasteQtyG  float64   `json:"waste_qty_g"`
	// Action: complete（收尾）、next_flush（转下一潮）、dispose（整批废弃）
	Action string `json:"action" binding:"required,oneof=complete next_flush dispose"`
	Notes  string `json:"notes"`
}

// HarvestResult 采收结果
type HarvestResult struct {
	Log           *entity.ProductionLog `json:"log"`
	Batch         *entity.Batch         `json:"batch"`
	DeliveryOrder *entity.DeliveryOrder `json:"delivery_order,omitempty"`
}

// RecordHarvest 等级产量校验非负后落账；当前潮次活动配送单推进 IN_TRANSIT；
// dispose 把批次归入完结态，next_flush 翻潮并把出菇菌包重置回出针。
func (s *LogService) RecordHarvest(ctx context.Context, req HarvestRequest, actor string) (*HarvestResult, error) {
	if req.GradeAQtyG < 0 || req.GradeBQtyG < 0 || req.WasteQtyG < 0 {
		return nil, ErrNegativeYield
	}
	batch, err := s.repos.Batch.FindByID(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}

	log := &entity.ProductionLog{
		ID:            uuid.New().String(),
		BatchID:       batch.ID,
		Stage:         entity.StageHarvest,
		DateStarted:   req.Date,
		FlushNumber:   batch.CurrentFlush,
		GradeAQtyG:    req.GradeAQtyG,
		GradeBQtyG:    req.GradeBQtyG,
		WasteQtyG:     req.WasteQtyG,
		HarvestAction: req.Action,
		Notes:         req.Notes,
		CreatedBy:     actor,
	}
	if err := s.repos.Log.Create(ctx, log); err != nil {
		return nil, err
	}

	order, err := s.delivery.OnHarvest(ctx, batch)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case "dispose":
		batch.Status = entity.BatchStatusCompleted
	case "next_flush":
		batch.CurrentFlush++
		batch.Status = entity.BatchStatusGrowing
		if _, _, err := s.items.BatchWideTransition(ctx, batch.ID, entity.ItemFruitingPinning); err != nil {
			return nil, err
		}
	default:
		batch.Status = entity.BatchStatusHarvested
	}
	if err := s.repos.Batch.Update(ctx, batch); err != nil {
		return nil, err
	}

	s.logActivity(ctx, actor, "harvest_recorded",
		fmt.Sprintf("batch %s flush %d: %.0fg A / %.0fg B, action=%s",
			batch.ID, log.FlushNumber, req.GradeAQtyG, req.GradeBQtyG, req.Action))
	s.bus.Publish(events.Event{Kind: events.KindHarvestRecorded, BatchID: batch.ID, Payload: log})

	return &HarvestResult{Log: log, Batch: batch, DeliveryOrder: order}, nil
}

func (s *LogService) ListSnapshots(ctx context.Context, batchID string) ([]entity.StatusSnapshot, error) {
	return s.repos.Log.ListSnapshots(ctx, batchID)
}

func (s *LogService) ListObservations(ctx context.Context, batchID string, flush int) ([]entity.Observation, error) {
	return s.repos.Observation.ListByBatch(ctx, batchID, flush)
}

// logActivity 写操作日志；失败只记 log 不中断业务
func (s *LogService) logActivity(ctx context.Context, actor, action, message string) {
	entry := &entity.ActivityLog{Actor: actor, Action: action, Message: message}
	if err := s.repos.Activity.Create(ctx, entry); err != nil {
		s.logger.Warn("activity log write failed", zap.Error(err), zap.String("action", action))
	}
}
