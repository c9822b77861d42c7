package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/events"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
	"go.uber.org/zap"
)

// DeliveryService 下游配送触发器
type DeliveryService struct {
	repo   *repository.DeliveryOrderRepository
	bus    *events.Bus
	logger *zap.Logger
}

func NewDeliveryService(repo *repository.DeliveryOrderRepository, bus *events.Bus, logger *zap.Logger) *DeliveryService {
	return &DeliveryService{repo: repo, bus: bus, logger: logger}
}

// OnBatchTransition 全批次推进到 FRUITING_MATURING / FRUITING_READY 后调用。
// 当前潮次已有活动单则什么都不做，保证每潮至多一张；否则按块数估产建 PENDING 单。
func (s *DeliveryService) OnBatchTransition(ctx context.Context, batch *entity.Batch, newStatus entity.ItemStatus, activeCount, readyCount int, obsDate time.Time) (*entity.DeliveryOrder, error) {
	if newStatus != entity.ItemFruitingMaturing && newStatus != entity.ItemFruitingReady {
		return nil, nil
	}

	if existing, err := s.repo.FindActive(ctx, batch.ID, batch.CurrentFlush); err == nil {
		s.logger.Debug("active delivery order already exists",
			zap.String("batch_id", batch.ID),
			zap.Int("flush", batch.CurrentFlush),
			zap.String("order_id", existing.ID),
		)
		return nil, nil
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	yieldKG := batch.EstAvgWeightPerBlockG * float64(activeCount+readyCount) / 1000
	order := &entity.DeliveryOrder{
		BatchID:          batch.ID,
		FlushNumber:      batch.CurrentFlush,
		Status:           entity.DeliveryStatusPending,
		EstimatedYieldKG: yieldKG,
		DeliveryDate:     obsDate.AddDate(0, 0, 1),
		NotifyMessage: fmt.Sprintf("Batch %s (%s) flush %d: est. %.2f kg, delivery %s",
			batch.ID, batch.Species, batch.CurrentFlush, yieldKG,
			obsDate.AddDate(0, 0, 1).Format("2006-01-02")),
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("delivery order created",
		zap.String("order_id", order.ID),
		zap.String("batch_id", batch.ID),
		zap.Int("flush", batch.CurrentFlush),
		zap.Float64("est_yield_kg", yieldKG),
	)
	s.bus.Publish(events.Event{Kind: events.KindDeliveryCreated, BatchID: batch.ID, Payload: order})
	return order, nil
}

// OnHarvest 采收落账时把当前潮次的活动单推进到 IN_TRANSIT。
// 没有活动单不算错误，直接返回 nil。
func (s *DeliveryService) OnHarvest(ctx context.Context, batch *entity.Batch) (*entity.DeliveryOrder, error) {
	order, err := s.repo.FindActive(ctx, batch.ID, batch.CurrentFlush)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	order.Status = entity.DeliveryStatusInTransit
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	s.bus.Publish(events.Event{Kind: events.KindDeliveryMoved, BatchID: batch.ID, Payload: order})
	return order, nil
}

func (s *DeliveryService) List(ctx context.Context, batchID, status string) ([]entity.DeliveryOrder, error) {
	return s.repo.List(ctx, batchID, status)
}

// Confirm PENDING → CONFIRMED
func (s *DeliveryService) Confirm(ctx context.Context, id string) (*entity.DeliveryOrder, error) {
	return s.move(ctx, id, entity.DeliveryStatusPending, entity.DeliveryStatusConfirmed)
}

// Cancel 活动单 → CANCELLED
func (s *DeliveryService) Cancel(ctx context.Context, id string) (*entity.DeliveryOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.DeliveryStatusPending && order.Status != entity.DeliveryStatusConfirmed {
		return nil, fmt.Errorf("order %s cannot be cancelled from status %s", id, order.Status)
	}
	order.Status = entity.DeliveryStatusCancelled
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	s.bus.Publish(events.Event{Kind: events.KindDeliveryMoved, BatchID: order.BatchID, Payload: order})
	return order, nil
}

func (s *DeliveryService) move(ctx context.Context, id, from, to string) (*entity.DeliveryOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != from {
		return nil, fmt.Errorf("order %s is %s, expected %s", id, order.Status, from)
	}
	order.Status = to
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	s.bus.Publish(events.Event{Kind: events.KindDeliveryMoved, BatchID: order.BatchID, Payload: order})
	return order, nil
}
