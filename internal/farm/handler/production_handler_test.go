package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/events"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/service"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupProductionTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedBatch(t, db, "B-2026-200", "Shiitake")
	testutil.SeedMaterial(t, db, "MAT-SPAWN", entity.MaterialCategorySpawn, "Spawn Jar", 20)
	testutil.SeedMaterial(t, db, "MAT-BAG", entity.MaterialCategoryPackaging, "Grow Bag", 200)

	repos := repository.NewRepositories(db)
	bus := events.NewBus()
	services := service.NewServices(repos, nil, bus, zap.NewNop())
	handlers := NewHandlers(services, repos, bus)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	api.POST("/logs", handlers.Production.SaveLog)
	api.POST("/harvests", handlers.Production.RecordHarvest)
	api.GET("/batches/:id/logs", handlers.Production.ListLogs)
	api.GET("/inventory/stock-limit/:materialId", handlers.Inventory.StockLimit)

	return router, db
}

func TestSaveLogEndpoint(t *testing.T) {
	router, db := setupProductionTest(t)
	token := testutil.GenerateTestToken("u-001", "Operator Wang")

	body := map[string]interface{}{
		"batch_id":          "B-2026-200",
		"stage":             "INOCULATION",
		"date_started":      time.Now().Format(time.RFC3339),
		"spawn_qty":         5,
		"spawn_material_id": "MAT-SPAWN",
		"bag_qty":           100,
		"bag_material_id":   "MAT-BAG",
		"packed_blocks":     40,
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/logs", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 0 {
		t.Errorf("expected code 0, got %v", resp["code"])
	}

	var log entity.ProductionLog
	if err := db.First(&log, "batch_id = ?", "B-2026-200").Error; err != nil {
		t.Fatalf("log not persisted: %v", err)
	}
	if log.CreatedBy != "Operator Wang" {
		t.Errorf("actor should come from the token, got %q", log.CreatedBy)
	}

	var items int64
	db.Model(&entity.BatchItem{}).Where("batch_id = ?", "B-2026-200").Count(&items)
	if items != 40 {
		t.Errorf("expected 40 items generated, got %d", items)
	}
}

func TestSaveLogEndpointInsufficientStock(t *testing.T) {
	router, _ := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"batch_id":          "B-2026-200",
		"stage":             "INOCULATION",
		"date_started":      time.Now().Format(time.RFC3339),
		"spawn_qty":         50, // 只有 20
		"spawn_material_id": "MAT-SPAWN",
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/logs", body, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40901 {
		t.Errorf("expected code 40901, got %v", resp["code"])
	}
}

func TestSaveLogEndpointRequiresAuth(t *testing.T) {
	router, _ := setupProductionTest(t)
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/logs", map[string]interface{}{}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}

func TestStockLimitEndpoint(t *testing.T) {
	router, db := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	// 先建一条占用 15 的日志
	body := map[string]interface{}{
		"batch_id":          "B-2026-200",
		"stage":             "INOCULATION",
		"date_started":      time.Now().Format(time.RFC3339),
		"spawn_qty":         15,
		"spawn_material_id": "MAT-SPAWN",
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/logs", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("setup log failed: %d %s", w.Code, w.Body.String())
	}

	var log entity.ProductionLog
	if err := db.First(&log, "batch_id = ?", "B-2026-200").Error; err != nil {
		t.Fatal(err)
	}

	// 不带 log_id：物理库存 5
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/inventory/stock-limit/MAT-SPAWN", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["limit"].(float64) != 5 {
		t.Errorf("expected physical 5, got %v", data["limit"])
	}

	// 带 log_id：虚拟库存 5 + 15 = 20
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/inventory/stock-limit/MAT-SPAWN?log_id="+log.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["limit"].(float64) != 20 {
		t.Errorf("expected virtual 20, got %v", data["limit"])
	}
}

func TestRecordHarvestEndpointNegativeYield(t *testing.T) {
	router, _ := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"batch_id":      "B-2026-200",
		"date":          time.Now().Format(time.RFC3339),
		"grade_a_qty_g": -100,
		"action":        "complete",
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/harvests", body, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40001 {
		t.Errorf("expected code 40001, got %v", resp["code"])
	}
}

func TestListLogsEndpoint(t *testing.T) {
	router, _ := setupProductionTest(t)
	token := testutil.DefaultTestToken()

	for _, stage := range []string{"SUBSTRATE", "INOCULATION"} {
		body := map[string]interface{}{
			"batch_id":     "B-2026-200",
			"stage":        stage,
			"date_started": time.Now().Format(time.RFC3339),
		}
		w := testutil.DoRequest(router, http.MethodPost, "/api/v1/logs", body, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("setup %s log failed: %d", stage, w.Code)
		}
	}

	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/batches/B-2026-200/logs?stage=SUBSTRATE", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := testutil.ParseResponse(w)["data"].([]interface{})
	if len(data) != 1 {
		t.Errorf("expected 1 SUBSTRATE log, got %d", len(data))
	}
}
