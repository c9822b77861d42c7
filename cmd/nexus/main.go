package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sokying84-sketch/mycelium-nexus/internal/config"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/entity"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/events"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/handler"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/repository"
	"github.com/sokying84-sketch/mycelium-nexus/internal/farm/service"
	"github.com/sokying84-sketch/mycelium-nexus/internal/middleware"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting mycelium-nexus service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Material{},
		&entity.InventoryLevel{},
		&entity.InventoryMovement{},
		&entity.Batch{},
		&entity.BatchItem{},
		&entity.ProductionLog{},
		&entity.StatusSnapshot{},
		&entity.Observation{},
		&entity.DeliveryOrder{},
		&entity.Alert{},
		&entity.ActivityLog{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	// Redis 可选：未配置时物料目录不走缓存
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = initRedis(cfg.Redis)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zapLogger.Warn("Redis unavailable, catalog cache disabled", zap.Error(err))
			rdb = nil
		}
	}

	bus := events.NewBus()

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, bus, zapLogger)
	handlers := handler.NewHandlers(services, repos, bus)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	api := r.Group("/api/v1", middleware.JWTAuth(cfg.JWT.Secret))
	{
		materials := api.Group("/materials")
		{
			materials.GET("", h.Material.List)
			materials.POST("", h.Material.Create)
			materials.GET("/:id", h.Material.Get)
		}

		inventory := api.Group("/inventory")
		{
			inventory.GET("/levels", h.Inventory.ListLevels)
			inventory.GET("/stock/:materialId", h.Inventory.GetStock)
			inventory.GET("/stock-limit/:materialId", h.Inventory.StockLimit)
			inventory.GET("/movements", h.Inventory.ListMovements)
			inventory.GET("/movements/export", h.Inventory.ExportMovements)
			inventory.POST("/adjustments", h.Inventory.Adjust)
		}

		batches := api.Group("/batches")
		{
			batches.GET("", h.Batch.List)
			batches.POST("", h.Batch.Create)
			batches.GET("/:id", h.Batch.Get)
			batches.PUT("/:id/status", h.Batch.SetStatus)
			batches.GET("/:id/items", h.Batch.ListItems)
			batches.PUT("/:id/items/bulk-status", h.Batch.BulkSetItems)
			batches.GET("/:id/logs", h.Production.ListLogs)
			batches.GET("/:id/observations", h.Production.ListObservations)
			batches.GET("/:id/snapshots", h.Production.ListSnapshots)
		}

		api.POST("/logs", h.Production.SaveLog)
		api.POST("/observations", h.Production.RecordObservation)
		api.POST("/incubation-updates", h.Production.RecordIncubationUpdate)
		api.POST("/harvests", h.Production.RecordHarvest)

		deliveries := api.Group("/deliveries")
		{
			deliveries.GET("", h.Delivery.List)
			deliveries.PUT("/:id/confirm", h.Delivery.Confirm)
			deliveries.PUT("/:id/cancel", h.Delivery.Cancel)
		}

		alerts := api.Group("/alerts")
		{
			alerts.GET("/pending", h.Alert.ListPending)
			alerts.PUT("/:id/ack", h.Alert.Ack)
		}

		api.GET("/activities", h.Alert.ListActivity)
		api.GET("/events", h.Stream.Stream)
	}
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
