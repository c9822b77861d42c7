package repository

import (
	"context"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"gorm.io/gorm"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) Create(ctx context.Context, b *entity.Batch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BatchRepository) FindByID(ctx context.Context, id string) (*entity.Batch, error) {
	var b entity.Batch
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &b, nil
}

func (r *BatchRepository) Update(ctx context.Context, b *entity.Batch) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BatchRepository) List(ctx context.Context, status string) ([]entity.Batch, error) {
	var batches []entity.Batch
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&batches).Error
	return batches, err
}

type BatchItemRepository struct {
	db *gorm.DB
}

func NewBatchItemRepository(db *gorm.DB) *BatchItemRepository {
	return &BatchItemRepository{db: db}
}

func (r *BatchItemRepository) CreateInBatches(ctx context.Context, items []entity.BatchItem) error {
	return r.db.WithContext(ctx).CreateInBatches(items, 200).Error
}

func (r *BatchItemRepository) CountByBatch(ctx context.Context, batchID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.BatchItem{}).
		Where("batch_id = ?", batchID).Count(&n).Error
	return n, err
}

func (r *BatchItemRepository) ListByBatch(ctx context.Context, batchID string) ([]entity.BatchItem, error) {
	var items []entity.BatchItem
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("seq ASC").
		Find(&items).Error
	return items, err
}

// UpdateStatusByIDs 显式勾选的批量改状态，返回实际命中的行数
func (r *BatchItemRepository) UpdateStatusByIDs(ctx context.Context, ids []string, status entity.ItemStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.BatchItem{}).
		Where("id IN ?", ids).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// UpdateStatusBatchWide 全批次推进：只作用于出菇路径上的状态，
// 异常态（FAILED/CONTAMINATED/DISPOSED）永不触碰。
func (r *BatchItemRepository) UpdateStatusBatchWide(ctx context.Context, batchID string, from []entity.ItemStatus, to entity.ItemStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.BatchItem{}).
		Where("batch_id = ? AND status IN ?", batchID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *BatchItemRepository) CountByStatus(ctx context.Context, batchID string) (map[entity.ItemStatus]int, error) {
	type row struct {
		Status entity.ItemStatus
		N      int
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&entity.BatchItem{}).
		Select("status, count(*) as n").
		Where("batch_id = ?", batchID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[entity.ItemStatus]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}
