package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupItemTest(t *testing.T) (*ItemService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedBatch(t, db, "B-2026-001", "Shiitake")
	return NewItemService(repository.NewBatchItemRepository(db), zap.NewNop()), db
}

func TestGenerateItemsSequentialIDs(t *testing.T) {
	svc, _ := setupItemTest(t)
	ctx := testutil.Ctx()

	items, err := svc.GenerateItems(ctx, "B-2026-001", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != "B-2026-001-0001" || items[2].ID != "B-2026-001-0003" {
		t.Errorf("unexpected IDs: %s .. %s", items[0].ID, items[2].ID)
	}
	for _, it := range items {
		if it.Status != entity.ItemInoculated {
			t.Errorf("new items start INOCULATED, got %s", it.Status)
		}
	}

	// 续编不重号
	more, err := svc.GenerateItems(ctx, "B-2026-001", 2)
	if err != nil {
		t.Fatal(err)
	}
	if more[0].ID != "B-2026-001-0004" || more[1].ID != "B-2026-001-0005" {
		t.Errorf("sequence must continue, got %s, %s", more[0].ID, more[1].ID)
	}
}

func TestBulkSetStatusExplicitSelection(t *testing.T) {
	svc, db := setupItemTest(t)
	ctx := testutil.Ctx()
	testutil.SeedItems(t, db, "B-2026-001", 4, entity.ItemInoculated)

	updated, err := svc.BulkSetStatus(ctx, []string{"B-2026-001-0001", "B-2026-001-0002"}, entity.ItemIncubating)
	if err != nil {
		t.Fatal(err)
	}
	if updated != 2 {
		t.Errorf("expected 2 rows updated, got %d", updated)
	}

	counts, err := svc.repo.CountByStatus(ctx, "B-2026-001")
	if err != nil {
		t.Fatal(err)
	}
	if counts[entity.ItemIncubating] != 2 || counts[entity.ItemInoculated] != 2 {
		t.Errorf("unexpected distribution: %v", counts)
	}
}

func TestBulkSetStatusNoMatch(t *testing.T) {
	svc, _ := setupItemTest(t)
	_, err := svc.BulkSetStatus(testutil.Ctx(), []string{"B-2026-001-9999"}, entity.ItemIncubating)
	if !errors.Is(err, ErrNoItemsMatched) {
		t.Errorf("expected ErrNoItemsMatched, got %v", err)
	}
}

func TestBulkSetStatusInvalidStatus(t *testing.T) {
	svc, db := setupItemTest(t)
	testutil.SeedItems(t, db, "B-2026-001", 1, entity.ItemInoculated)
	_, err := svc.BulkSetStatus(testutil.Ctx(), []string{"B-2026-001-0001"}, "HARVESTED")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestBatchWideTransitionPreservesExceptions(t *testing.T) {
	svc, db := setupItemTest(t)
	ctx := testutil.Ctx()

	items := testutil.SeedItems(t, db, "B-2026-001", 5, entity.ItemFruitingPinning)
	// 两只标记异常
	db.Model(&entity.BatchItem{}).Where("id = ?", items[0].ID).Update("status", entity.ItemContaminated)
	db.Model(&entity.BatchItem{}).Where("id = ?", items[1].ID).Update("status", entity.ItemFailed)

	updated, skipped, err := svc.BatchWideTransition(ctx, "B-2026-001", entity.ItemFruitingMaturing)
	if err != nil {
		t.Fatal(err)
	}
	if updated != 3 {
		t.Errorf("expected 3 updated, got %d", updated)
	}
	if skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", skipped)
	}

	counts, _ := svc.repo.CountByStatus(ctx, "B-2026-001")
	if counts[entity.ItemContaminated] != 1 || counts[entity.ItemFailed] != 1 {
		t.Errorf("exception items must be untouched: %v", counts)
	}
	if counts[entity.ItemFruitingMaturing] != 3 {
		t.Errorf("expected 3 FRUITING_MATURING, got %v", counts)
	}
}

func TestBatchWideTransitionSkipsPreFruiting(t *testing.T) {
	svc, db := setupItemTest(t)
	ctx := testutil.Ctx()
	testutil.SeedItems(t, db, "B-2026-001", 2, entity.ItemIncubating)

	updated, _, err := svc.BatchWideTransition(ctx, "B-2026-001", entity.ItemFruitingPinning)
	if err != nil {
		t.Fatal(err)
	}
	if updated != 0 {
		t.Errorf("incubating items are not in batch-wide scope, got %d updated", updated)
	}
}

func TestBatchWideTransitionRejectsExceptionTarget(t *testing.T) {
	svc, db := setupItemTest(t)
	testutil.SeedItems(t, db, "B-2026-001", 2, entity.ItemFruitingPinning)

	if _, _, err := svc.BatchWideTransition(testutil.Ctx(), "B-2026-001", entity.ItemContaminated); err == nil {
		t.Error("batch-wide transition must not target an exception status")
	}
}

func TestSnapshotCounts(t *testing.T) {
	svc, db := setupItemTest(t)
	ctx := testutil.Ctx()
	testutil.SeedItems(t, db, "B-2026-001", 3, entity.ItemIncubating)

	snap, counts, err := svc.SnapshotCounts(ctx, "B-2026-001", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if counts[entity.ItemIncubating] != 3 {
		t.Errorf("expected 3 incubating, got %v", counts)
	}

	var decoded map[string]int
	if err := json.Unmarshal([]byte(snap.CountsJSON), &decoded); err != nil {
		t.Fatalf("snapshot counts must be valid JSON: %v", err)
	}
	if decoded[string(entity.ItemIncubating)] != 3 {
		t.Errorf("unexpected snapshot payload: %v", decoded)
	}
}

func TestFruitingCounts(t *testing.T) {
	svc, db := setupItemTest(t)
	ctx := testutil.Ctx()
	testutil.SeedItems(t, db, "B-2026-001", 4, entity.ItemFruitingReady)
	db.Model(&entity.BatchItem{}).Where("id = ?", "B-2026-001-0004").Update("status", entity.ItemFruitingMaturing)

	active, ready, err := svc.FruitingCounts(ctx, "B-2026-001")
	if err != nil {
		t.Fatal(err)
	}
	if ready != 3 {
		t.Errorf("expected 3 ready, got %d", ready)
	}
	if active != 1 {
		t.Errorf("expected 1 active, got %d", active)
	}
}
