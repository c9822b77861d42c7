package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
	"go.uber.org/zap"
)

// batchWideSources 全批次推进可作用的起始状态
var batchWideSources = []entity.ItemStatus{
	entity.ItemReadyToFruit,
	entity.ItemFruitingPinning,
	entity.ItemFruitingMaturing,
	entity.ItemFruitingReady,
	entity.ItemFruitingOvermature,
}

// ItemService 菌包状态机
type ItemService struct {
	repo   *repository.BatchItemRepository
	logger *zap.Logger
}

func NewItemService(repo *repository.BatchItemRepository, logger *zap.Logger) *ItemService {
	return &ItemService{repo: repo, logger: logger}
}

// GenerateItems 接种时批量生成菌包，顺序编号，初始 INOCULATED。
// 每次接种日志保存且装袋数为正时恰好调用一次。
func (s *ItemService) GenerateItems(ctx context.Context, batchID string, count int) ([]entity.BatchItem, error) {
	if count <= 0 {
		return nil, fmt.Errorf("item count must be positive, got %d", count)
	}
	existing, err := s.repo.CountByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	items := make([]entity.BatchItem, count)
	for i := 0; i < count; i++ {
		seq := int(existing) + i + 1
		items[i] = entity.BatchItem{
			ID:      fmt.Sprintf("%s-%04d", batchID, seq),
			BatchID: batchID,
			Seq:     seq,
			Status:  entity.ItemInoculated,
		}
	}
	if err := s.repo.CreateInBatches(ctx, items); err != nil {
		return nil, err
	}
	s.logger.Info("batch items generated",
		zap.String("batch_id", batchID),
		zap.Int("count", count),
	)
	return items, nil
}

// BulkSetStatus 显式勾选的批量改状态：调用方已圈定范围，不做异常态保护。
// 传入的 id 与库中不符（命中 0 行）按过期选择处理。
func (s *ItemService) BulkSetStatus(ctx context.Context, ids []string, status entity.ItemStatus) (int64, error) {
	if !status.Valid() {
		return 0, ErrInvalidStatus
	}
	if len(ids) == 0 {
		return 0, ErrNoItemsMatched
	}
	updated, err := s.repo.UpdateStatusByIDs(ctx, ids, status)
	if err != nil {
		return 0, err
	}
	if updated == 0 {
		return 0, ErrNoItemsMatched
	}
	return updated, nil
}

// BatchWideTransition 全批次推进：只作用于 READY_TO_FRUIT 和 FRUITING_* 状态的菌包，
// 处于 FAILED/CONTAMINATED/DISPOSED 的永不改写。返回更新数与跳过数。
func (s *ItemService) BatchWideTransition(ctx context.Context, batchID string, status entity.ItemStatus) (updated, skipped int64, err error) {
	if !status.Valid() {
		return 0, 0, ErrInvalidStatus
	}
	if status.IsException() {
		// 异常态只能走显式勾选的 BulkSetStatus
		return 0, 0, fmt.Errorf("%w: %s is not a batch-wide target", ErrInvalidStatus, status)
	}

	counts, err := s.repo.CountByStatus(ctx, batchID)
	if err != nil {
		return 0, 0, err
	}
	for st, n := range counts {
		if st.IsException() {
			skipped += int64(n)
		}
	}

	updated, err = s.repo.UpdateStatusBatchWide(ctx, batchID, batchWideSources, status)
	if err != nil {
		return 0, 0, err
	}
	s.logger.Info("batch-wide transition",
		zap.String("batch_id", batchID),
		zap.String("status", string(status)),
		zap.Int64("updated", updated),
		zap.Int64("skipped", skipped),
	)
	return updated, skipped, nil
}

// SnapshotCounts 记录当前状态分布的不可变快照
func (s *ItemService) SnapshotCounts(ctx context.Context, batchID string, date time.Time) (*entity.StatusSnapshot, map[entity.ItemStatus]int, error) {
	counts, err := s.repo.CountByStatus(ctx, batchID)
	if err != nil {
		return nil, nil, err
	}
	b, err := json.Marshal(counts)
	if err != nil {
		return nil, nil, err
	}
	snap := &entity.StatusSnapshot{
		BatchID:    batchID,
		Date:       date,
		CountsJSON: string(b),
	}
	return snap, counts, nil
}

// FruitingCounts 当前在产/可采数量，用于估算配送量
func (s *ItemService) FruitingCounts(ctx context.Context, batchID string) (active, ready int, err error) {
	counts, err := s.repo.CountByStatus(ctx, batchID)
	if err != nil {
		return 0, 0, err
	}
	for st, n := range counts {
		switch {
		case st == entity.ItemFruitingReady:
			ready += n
		case st.IsFruitingPhase():
			active += n
		}
	}
	return active, ready, nil
}

func (s *ItemService) ListByBatch(ctx context.Context, batchID string) ([]entity.BatchItem, error) {
	return s.repo.ListByBatch(ctx, batchID)
}
