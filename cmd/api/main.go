package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flavor-twin/internal/api"
	"flavor-twin/internal/api/handlers/health"
	"flavor-twin/internal/core/cache"
	"flavor-twin/internal/core/catalog"
	"flavor-twin/internal/core/flavor"
	"flavor-twin/internal/core/provider"
	"flavor-twin/internal/core/twin"
	"flavor-twin/internal/infrastructure/config"
	"flavor-twin/internal/infrastructure/database"
	"flavor-twin/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.Log.Dir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("env", cfg.App.Env),
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.Bool("provider_enabled", cfg.Provider.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	// 資料庫（選用）
	var db *gorm.DB
	checkers := map[string]health.Checker{}
	if cfg.Database.DSN != "" {
		db, err = database.Open(cfg.Database)
		if err != nil {
			common.LogFatal("Failed to connect to database", zap.Error(err))
		}
		defer database.Close(db)
		checkers["database"] = func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		}
	}

	// 風味分類表
	engine, err := newEngine(cfg.Flavor)
	if err != nil {
		common.LogFatal("Failed to load flavor ruleset", zap.Error(err))
	}

	// 菜餚目錄
	cat, err := loadCatalog(cfg.Catalog, db)
	if err != nil {
		common.LogFatal("Failed to load catalog", zap.Error(err))
	}

	// 初始化快取
	dishCache, err := cache.New(cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	defer dishCache.Close()

	// 外部食譜服務（選用）
	var recipes provider.RecipeProvider
	if cfg.Provider.Enabled {
		recipes = provider.NewClient(cfg.Provider)
	}

	svc := twin.NewService(engine, cat, recipes, dishCache, cfg.Match)

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		Twin:     svc,
		Cache:    dishCache,
		Checkers: checkers,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.String("ruleset", engine.Builder().Ruleset().Version()),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

// newEngine 依設定建立引擎，未指定分類表檔案時使用內建表
func newEngine(cfg config.FlavorConfig) (*flavor.Engine, error) {
	if cfg.RulesetPath == "" {
		return flavor.NewEngine(), nil
	}
	rs, err := flavor.LoadRulesetFile(cfg.RulesetPath)
	if err != nil {
		return nil, err
	}
	common.LogInfo("已載入自訂分類表",
		zap.String("path", cfg.RulesetPath),
		zap.String("version", rs.Version()),
		zap.Int("rules", rs.Len()),
	)
	return flavor.NewEngine(flavor.WithRuleset(rs)), nil
}

// loadCatalog 依設定選擇目錄來源
func loadCatalog(cfg config.CatalogConfig, db *gorm.DB) (*catalog.Catalog, error) {
	var src catalog.Source
	switch cfg.Source {
	case config.CatalogSourceFile:
		src = catalog.FileSource{Path: cfg.Path}
	case config.CatalogSourceDatabase:
		if db == nil {
			return nil, fmt.Errorf("database catalog requires a database connection")
		}
		src = catalog.SQLSource{DB: db}
	default:
		src = catalog.EmbeddedSource{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return catalog.Load(ctx, src)
}
