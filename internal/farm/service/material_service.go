package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
)

const (
	materialCacheKey = "farm:materials"
	materialCacheTTL = 5 * time.Minute
)

// MaterialService 物料主数据，走 Redis 缓存
type MaterialService struct {
	repo *repository.MaterialRepository
	rdb  *redis.Client
}

func NewMaterialService(repo *repository.MaterialRepository, rdb *redis.Client) *MaterialService {
	return &MaterialService{repo: repo, rdb: rdb}
}

// List 全量列表优先读缓存，按类目过滤时直接查库
func (s *MaterialService) List(ctx context.Context, category string) ([]entity.Material, error) {
	if category == "" && s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, materialCacheKey).Result(); err == nil {
			var materials []entity.Material
			if json.Unmarshal([]byte(cached), &materials) == nil {
				return materials, nil
			}
		}
	}

	materials, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, err
	}

	if category == "" && s.rdb != nil {
		if b, err := json.Marshal(materials); err == nil {
			s.rdb.Set(ctx, materialCacheKey, b, materialCacheTTL)
		}
	}
	return materials, nil
}

func (s *MaterialService) Get(ctx context.Context, id string) (*entity.Material, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *MaterialService) Create(ctx context.Context, m *entity.Material) error {
	if err := s.repo.Create(ctx, m); err != nil {
		return err
	}
	if s.rdb != nil {
		s.rdb.Del(ctx, materialCacheKey)
	}
	return nil
}
