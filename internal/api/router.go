package api

import (
	"fmt"
	"time"

	"flavor-twin/internal/api/handlers/health"
	twinHandler "flavor-twin/internal/api/handlers/twin"
	"flavor-twin/internal/api/middleware"
	"flavor-twin/internal/core/cache"
	twinService "flavor-twin/internal/core/twin"
	"flavor-twin/internal/infrastructure/config"
	"flavor-twin/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Twin     *twinService.Service
	Cache    cache.DishCache
	Checkers map[string]health.Checker
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Twin == nil {
		return nil, fmt.Errorf("twin service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID))) // 自動生成請求 ID
	router.Use(middleware.RequestContext())
	router.Use(middleware.Logger())

	// CORS 設置
	corsConfig := cors.Config{
		AllowOrigins:  cfg.API.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.API.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.API.RequestTimeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, deps.Twin, deps.Cache, deps.Checkers)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	api.Use(middleware.Deduplication(cfg.DedupWindow))
	{
		h := twinHandler.NewHandler(deps.Twin, cfg.API.MaxTraits, cfg.App.Debug)

		twinGroup := api.Group("/twins")
		{
			// 以菜名查找
			twinGroup.POST("", h.HandleFindTwins)

			// 直接提供來源菜餚
			twinGroup.POST("/match", h.HandleMatch)
		}

		flavorGroup := api.Group("/flavor")
		{
			flavorGroup.POST("/vector", h.HandleVector)
			flavorGroup.GET("/dimensions", h.HandleDimensions)
		}

		catalogGroup := api.Group("/catalog")
		{
			catalogGroup.GET("", h.HandleListCatalog)
			catalogGroup.GET("/:name", h.HandleGetDish)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Duration("timeout", cfg.API.RequestTimeout),
		zap.Int64("max_body_size", cfg.API.MaxBodyBytes),
		zap.Int("catalog_size", deps.Twin.Catalog().Len()),
	)

	return router, nil
}
