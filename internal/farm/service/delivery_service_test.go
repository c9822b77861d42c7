package service

import (
	"testing"
	"time"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/events"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDeliveryTest(t *testing.T) (*DeliveryService, *entity.Batch, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	batch := testutil.SeedBatch(t, db, "B-2026-010", "Oyster")
	svc := NewDeliveryService(repository.NewDeliveryOrderRepository(db), events.NewBus(), zap.NewNop())
	return svc, batch, db
}

func TestOnBatchTransitionCreatesOrder(t *testing.T) {
	svc, batch, _ := setupDeliveryTest(t)
	ctx := testutil.Ctx()
	obsDate := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	order, err := svc.OnBatchTransition(ctx, batch, entity.ItemFruitingMaturing, 30, 10, obsDate)
	if err != nil {
		t.Fatal(err)
	}
	if order == nil {
		t.Fatal("expected an order to be created")
	}
	if order.Status != entity.DeliveryStatusPending {
		t.Errorf("new order should be PENDING, got %s", order.Status)
	}
	// 500g × 40 块 = 20kg
	if order.EstimatedYieldKG != 20 {
		t.Errorf("expected 20 kg, got %v", order.EstimatedYieldKG)
	}
	if !order.DeliveryDate.Equal(obsDate.AddDate(0, 0, 1)) {
		t.Errorf("delivery date should be observation date + 1, got %v", order.DeliveryDate)
	}
}

func TestOnBatchTransitionIdempotentPerFlush(t *testing.T) {
	svc, batch, db := setupDeliveryTest(t)
	ctx := testutil.Ctx()
	obsDate := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	first, err := svc.OnBatchTransition(ctx, batch, entity.ItemFruitingMaturing, 30, 10, obsDate)
	if err != nil || first == nil {
		t.Fatalf("first trigger failed: order=%v err=%v", first, err)
	}

	// 次日再次推进：同潮次已有活动单，不再建
	second, err := svc.OnBatchTransition(ctx, batch, entity.ItemFruitingReady, 10, 30, obsDate.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if second != nil {
		t.Errorf("second trigger must not create another order, got %+v", second)
	}

	var count int64
	db.Model(&entity.DeliveryOrder{}).Where("batch_id = ?", batch.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 order, got %d", count)
	}
}

func TestOnBatchTransitionNewFlushNewOrder(t *testing.T) {
	svc, batch, db := setupDeliveryTest(t)
	ctx := testutil.Ctx()
	obsDate := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	if _, err := svc.OnBatchTransition(ctx, batch, entity.ItemFruitingReady, 0, 40, obsDate); err != nil {
		t.Fatal(err)
	}
	// 采收后翻潮
	if _, err := svc.OnHarvest(ctx, batch); err != nil {
		t.Fatal(err)
	}
	batch.CurrentFlush = 2

	order, err := svc.OnBatchTransition(ctx, batch, entity.ItemFruitingReady, 0, 35, obsDate.AddDate(0, 0, 14))
	if err != nil {
		t.Fatal(err)
	}
	if order == nil {
		t.Fatal("new flush should get its own order")
	}
	if order.FlushNumber != 2 {
		t.Errorf("expected flush 2, got %d", order.FlushNumber)
	}

	var count int64
	db.Model(&entity.DeliveryOrder{}).Where("batch_id = ?", batch.ID).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 orders across flushes, got %d", count)
	}
}

func TestOnBatchTransitionIgnoresOtherStatuses(t *testing.T) {
	svc, batch, _ := setupDeliveryTest(t)
	order, err := svc.OnBatchTransition(testutil.Ctx(), batch, entity.ItemFruitingPinning, 40, 0, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if order != nil {
		t.Errorf("FRUITING_PINNING must not trigger delivery, got %+v", order)
	}
}

func TestOnHarvestMovesActiveOrderInTransit(t *testing.T) {
	svc, batch, _ := setupDeliveryTest(t)
	ctx := testutil.Ctx()

	created, err := svc.OnBatchTransition(ctx, batch, entity.ItemFruitingReady, 0, 40, time.Now())
	if err != nil || created == nil {
		t.Fatalf("setup order failed: %v", err)
	}

	moved, err := svc.OnHarvest(ctx, batch)
	if err != nil {
		t.Fatal(err)
	}
	if moved == nil || moved.Status != entity.DeliveryStatusInTransit {
		t.Errorf("expected IN_TRANSIT, got %+v", moved)
	}
}

func TestOnHarvestWithoutActiveOrderIsNoop(t *testing.T) {
	svc, batch, _ := setupDeliveryTest(t)
	order, err := svc.OnHarvest(testutil.Ctx(), batch)
	if err != nil {
		t.Fatal(err)
	}
	if order != nil {
		t.Errorf("no active order should mean nil, got %+v", order)
	}
}

func TestConfirmAndCancel(t *testing.T) {
	svc, batch, _ := setupDeliveryTest(t)
	ctx := testutil.Ctx()

	created, err := svc.OnBatchTransition(ctx, batch, entity.ItemFruitingReady, 0, 40, time.Now())
	if err != nil || created == nil {
		t.Fatalf("setup order failed: %v", err)
	}

	confirmed, err := svc.Confirm(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if confirmed.Status != entity.DeliveryStatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", confirmed.Status)
	}

	// 已确认仍可取消
	cancelled, err := svc.Cancel(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.Status != entity.DeliveryStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}

	// 取消后不再是活动单
	if _, err := svc.Cancel(ctx, created.ID); err == nil {
		t.Error("cancelling a cancelled order must fail")
	}
}
