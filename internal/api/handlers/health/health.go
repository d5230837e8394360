package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"flavor-twin/internal/core/cache"
	twinService "flavor-twin/internal/core/twin"
	"flavor-twin/internal/infrastructure/config"
	"flavor-twin/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Catalog   *CatalogStatus         `json:"catalog,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// CatalogStatus 目錄狀態
type CatalogStatus struct {
	Source         string `json:"source"`
	Dishes         int    `json:"dishes"`
	RulesetVersion string `json:"ruleset_version"`
}

// Checker 外部依賴檢查，例如資料庫
type Checker func(ctx context.Context) error

// Handler 健康檢查處理器
type Handler struct {
	config   *config.Config
	service  *twinService.Service
	cache    cache.DishCache
	checkers map[string]Checker
}

// NewHandler 創建健康檢查處理器，checkers 可為 nil
func NewHandler(cfg *config.Config, service *twinService.Service, dishCache cache.DishCache, checkers map[string]Checker) *Handler {
	return &Handler{
		config:   cfg,
		service:  service,
		cache:    dishCache,
		checkers: checkers,
	}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.config.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if h.service != nil {
		response.Catalog = &CatalogStatus{
			Source:         h.service.Catalog().Source(),
			Dishes:         h.service.Catalog().Len(),
			RulesetVersion: h.service.Engine().Builder().Ruleset().Version(),
		}
	}
	if h.cache != nil {
		response.Cache = h.cache.Stats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 目錄已載入且所有依賴可用時才就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.service == nil || h.service.Catalog().Len() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "catalog is empty",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.checkers))
	ready := true
	for name, check := range h.checkers {
		if err := check(ctx); err != nil {
			common.LogWarn("依賴檢查失敗", zap.String("name", name), zap.Error(err))
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
	})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
