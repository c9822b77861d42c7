package repository

import (
	"context"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"gorm.io/gorm"
)

type DeliveryOrderRepository struct {
	db *gorm.DB
}

func NewDeliveryOrderRepository(db *gorm.DB) *DeliveryOrderRepository {
	return &DeliveryOrderRepository{db: db}
}

func (r *DeliveryOrderRepository) Create(ctx context.Context, o *entity.DeliveryOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *DeliveryOrderRepository) Update(ctx context.Context, o *entity.DeliveryOrder) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *DeliveryOrderRepository) FindByID(ctx context.Context, id string) (*entity.DeliveryOrder, error) {
	var o entity.DeliveryOrder
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &o, nil
}

// FindActive 查 (batch, flush) 当前的活动单（PENDING/CONFIRMED），
// 不存在返回 ErrNotFound —— 幂等触发依赖这一查询
func (r *DeliveryOrderRepository) FindActive(ctx context.Context, batchID string, flush int) (*entity.DeliveryOrder, error) {
	var o entity.DeliveryOrder
	err := r.db.WithContext(ctx).
		Where("batch_id = ? AND flush_number = ? AND status IN ?",
			batchID, flush, entity.ActiveDeliveryStatuses).
		First(&o).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &o, nil
}

func (r *DeliveryOrderRepository) List(ctx context.Context, batchID, status string) ([]entity.DeliveryOrder, error) {
	var orders []entity.DeliveryOrder
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if batchID != "" {
		q = q.Where("batch_id = ?", batchID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&orders).Error
	return orders, err
}
