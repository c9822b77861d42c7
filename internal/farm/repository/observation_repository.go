package repository

import (
	"context"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"gorm.io/gorm"
)

type ObservationRepository struct {
	db *gorm.DB
}

func NewObservationRepository(db *gorm.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

func (r *ObservationRepository) Create(ctx context.Context, o *entity.Observation) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *ObservationRepository) ListByBatch(ctx context.Context, batchID string, flush int) ([]entity.Observation, error) {
	var obs []entity.Observation
	q := r.db.WithContext(ctx).Where("batch_id = ?", batchID)
	if flush > 0 {
		q = q.Where("flush_number = ?", flush)
	}
	err := q.Order("date ASC").Find(&obs).Error
	return obs, err
}

// LatestPinningDate 当前潮次最早记录的 pinning 日期，未出针时返回 nil
func (r *ObservationRepository) LatestPinningDate(ctx context.Context, batchID string, flush int) (*entity.Observation, error) {
	var o entity.Observation
	err := r.db.WithContext(ctx).
		Where("batch_id = ? AND flush_number = ? AND pinning_date IS NOT NULL", batchID, flush).
		Order("date ASC").
		First(&o).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &o, nil
}
