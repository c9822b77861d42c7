package service

import (
	"context"
	"sort"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StockDelta 一次待提交的带符号库存变动
type StockDelta struct {
	MaterialID string
	Quantity   float64 // 正=归还/入库，负=消耗
	Type       string
	Reason     string
	BatchID    string
	LogID      string
}

// InventoryService 库存台账。不变式：任何物料的已提交库存永不为负。
type InventoryService struct {
	repo   *repository.InventoryRepository
	logger *zap.Logger
}

func NewInventoryService(repo *repository.InventoryRepository, logger *zap.Logger) *InventoryService {
	return &InventoryService{repo: repo, logger: logger}
}

// GetStock 当前已提交库存，没有库存行视为 0
func (s *InventoryService) GetStock(ctx context.Context, materialID string) (float64, error) {
	level, err := s.repo.GetLevel(ctx, materialID)
	if err != nil {
		if err == repository.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return level.OnHand, nil
}

// ApplyDelta 单笔变动，等价于只含一个元素的 ApplyDeltas
func (s *InventoryService) ApplyDelta(ctx context.Context, d StockDelta, actor string) (*entity.InventoryMovement, error) {
	movements, err := s.ApplyDeltas(ctx, []StockDelta{d}, actor)
	if err != nil {
		return nil, err
	}
	return &movements[0], nil
}

// ApplyDeltas 将一组变动作为单个事务提交。
// 先对涉及的库存行按物料序加行锁，再按物料净额校验不为负，
// 全部通过后才更新余额并追加流水；任何一项不足则整组回滚，零写入。
func (s *InventoryService) ApplyDeltas(ctx context.Context, deltas []StockDelta, actor string) ([]entity.InventoryMovement, error) {
	if len(deltas) == 0 {
		return nil, nil
	}

	net := make(map[string]float64)
	for _, d := range deltas {
		net[d.MaterialID] += d.Quantity
	}
	materialIDs := make([]string, 0, len(net))
	for id := range net {
		materialIDs = append(materialIDs, id)
	}
	// 固定加锁顺序，避免并发批次死锁
	sort.Strings(materialIDs)

	var movements []entity.InventoryMovement
	err := s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		levels := make(map[string]*entity.InventoryLevel, len(materialIDs))
		for _, id := range materialIDs {
			level, err := s.repo.GetLevelForUpdate(tx, id)
			if err != nil {
				return err
			}
			if level.OnHand+net[id] < 0 {
				return &InsufficientStockError{
					MaterialID: id,
					Requested:  -net[id],
					Available:  level.OnHand,
				}
			}
			levels[id] = level
		}

		for _, id := range materialIDs {
			level := levels[id]
			level.OnHand += net[id]
			if err := s.repo.UpdateLevel(tx, level); err != nil {
				return err
			}
		}

		for _, d := range deltas {
			m := entity.InventoryMovement{
				MaterialID: d.MaterialID,
				Quantity:   d.Quantity,
				Type:       d.Type,
				Reason:     d.Reason,
				BatchID:    d.BatchID,
				LogID:      d.LogID,
				CreatedBy:  actor,
			}
			if err := s.repo.CreateMovement(tx, &m); err != nil {
				return err
			}
			movements = append(movements, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory deltas committed",
		zap.Int("movements", len(movements)),
		zap.Int("materials", len(materialIDs)),
		zap.String("actor", actor),
	)
	return movements, nil
}

// Adjust 人工盘点调整（正负均可），走同一条不为负校验
func (s *InventoryService) Adjust(ctx context.Context, materialID string, qty float64, reason, actor string) (*entity.InventoryMovement, error) {
	return s.ApplyDelta(ctx, StockDelta{
		MaterialID: materialID,
		Quantity:   qty,
		Type:       entity.MovementTypeAdjustment,
		Reason:     reason,
	}, actor)
}

func (s *InventoryService) ListMovements(ctx context.Context, params repository.MovementListParams) ([]entity.InventoryMovement, int64, error) {
	return s.repo.ListMovements(ctx, params)
}

func (s *InventoryService) ListLevels(ctx context.Context) ([]entity.InventoryLevel, error) {
	return s.repo.ListLevels(ctx)
}
