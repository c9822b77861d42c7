package repository

import (
	"context"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) DB() *gorm.DB {
	return r.db
}

// GetLevel 读取某物料当前库存行，不存在时返回 ErrNotFound
func (r *InventoryRepository) GetLevel(ctx context.Context, materialID string) (*entity.InventoryLevel, error) {
	var level entity.InventoryLevel
	err := r.db.WithContext(ctx).First(&level, "material_id = ?", materialID).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &level, nil
}

// GetLevelForUpdate 在事务内加行锁读取库存行，没有则建一行零库存，
// 保证 check-then-commit 期间该物料不被其他写入穿插。
func (r *InventoryRepository) GetLevelForUpdate(tx *gorm.DB, materialID string) (*entity.InventoryLevel, error) {
	var level entity.InventoryLevel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&level, "material_id = ?", materialID).Error
	if err == nil {
		return &level, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	level = entity.InventoryLevel{MaterialID: materialID, OnHand: 0}
	if err := tx.Create(&level).Error; err != nil {
		return nil, err
	}
	// 重新加锁读取刚插入的行
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&level, "material_id = ?", materialID).Error
	return &level, err
}

func (r *InventoryRepository) UpdateLevel(tx *gorm.DB, level *entity.InventoryLevel) error {
	return tx.Model(&entity.InventoryLevel{}).
		Where("id = ?", level.ID).
		Update("on_hand", level.OnHand).Error
}

func (r *InventoryRepository) CreateMovement(tx *gorm.DB, m *entity.InventoryMovement) error {
	return tx.Create(m).Error
}

type MovementListParams struct {
	MaterialID string
	BatchID    string
	Page       int
	PageSize   int
}

func (r *InventoryRepository) ListMovements(ctx context.Context, params MovementListParams) ([]entity.InventoryMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.InventoryMovement{})
	if params.MaterialID != "" {
		q = q.Where("material_id = ?", params.MaterialID)
	}
	if params.BatchID != "" {
		q = q.Where("batch_id = ?", params.BatchID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Page > 0 && params.PageSize > 0 {
		q = q.Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize)
	}

	var movements []entity.InventoryMovement
	err := q.Order("created_at DESC").Find(&movements).Error
	return movements, total, err
}

func (r *InventoryRepository) ListLevels(ctx context.Context) ([]entity.InventoryLevel, error) {
	var levels []entity.InventoryLevel
	err := r.db.WithContext(ctx).Preload("Material").Order("material_id ASC").Find(&levels).Error
	return levels, err
}
