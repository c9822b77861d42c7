package repository

import (
	"context"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"gorm.io/gorm"
)

type ProductionLogRepository struct {
	db *gorm.DB
}

func NewProductionLogRepository(db *gorm.DB) *ProductionLogRepository {
	return &ProductionLogRepository{db: db}
}

func (r *ProductionLogRepository) Create(ctx context.Context, l *entity.ProductionLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *ProductionLogRepository) Update(ctx context.Context, l *entity.ProductionLog) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *ProductionLogRepository) FindByID(ctx context.Context, id string) (*entity.ProductionLog, error) {
	var l entity.ProductionLog
	if err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &l, nil
}

func (r *ProductionLogRepository) ListByBatch(ctx context.Context, batchID string, stage entity.Stage) ([]entity.ProductionLog, error) {
	var logs []entity.ProductionLog
	q := r.db.WithContext(ctx).Where("batch_id = ?", batchID)
	if stage != "" {
		q = q.Where("stage = ?", stage)
	}
	err := q.Order("date_started ASC, created_at ASC").Find(&logs).Error
	return logs, err
}

func (r *ProductionLogRepository) CreateSnapshot(ctx context.Context, s *entity.StatusSnapshot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ProductionLogRepository) ListSnapshots(ctx context.Context, batchID string) ([]entity.StatusSnapshot, error) {
	var snaps []entity.StatusSnapshot
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("date ASC").
		Find(&snaps).Error
	return snaps, err
}
