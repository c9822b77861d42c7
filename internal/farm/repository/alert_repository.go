package repository

import (
	"context"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, a *entity.Alert) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// ListPending outbox 轮询：未投递的提醒，先进先出
func (r *AlertRepository) ListPending(ctx context.Context) ([]entity.Alert, error) {
	var alerts []entity.Alert
	err := r.db.WithContext(ctx).
		Where("delivered = false").
		Order("created_at ASC").
		Find(&alerts).Error
	return alerts, err
}

func (r *AlertRepository) MarkDelivered(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Alert{}).
		Where("id = ? AND delivered = false", id).
		Update("delivered", true)
	return res.RowsAffected, res.Error
}

type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, l *entity.ActivityLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *ActivityLogRepository) List(ctx context.Context, limit int) ([]entity.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []entity.ActivityLog
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
