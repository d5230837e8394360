package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"flavor-twin/internal/core/flavor"
	"flavor-twin/internal/infrastructure/config"
	"flavor-twin/internal/pkg/common"
)

// DishCache 以查詢字串快取已解析的來源菜餚
type DishCache interface {
	// Get 未命中時回傳 common.ErrCacheMiss
	Get(ctx context.Context, query string) (flavor.Dish, error)
	Set(ctx context.Context, query string, dish flavor.Dish) error
	Stats() map[string]interface{}
	Close() error
}

// New 依設定建立快取，停用時回傳 Noop
func New(cfg config.CacheConfig) (DishCache, error) {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return Noop{}, nil
	}
	switch cfg.Backend {
	case config.CacheBackendRedis:
		return NewRedis(cfg)
	default:
		return NewManager(cfg), nil
	}
}

// generateKey 查詢字串正規化後取 SHA-256
func generateKey(query string) string {
	hash := sha256.Sum256([]byte(common.NormalizeKey(query)))
	return "dish:" + hex.EncodeToString(hash[:])
}

// Noop 停用時使用的快取，永遠未命中
type Noop struct{}

// Get 永遠未命中
func (Noop) Get(ctx context.Context, query string) (flavor.Dish, error) {
	return flavor.Dish{}, common.ErrCacheDisabled
}

// Set 不做任何事
func (Noop) Set(ctx context.Context, query string, dish flavor.Dish) error { return nil }

// Stats 停用狀態
func (Noop) Stats() map[string]interface{} {
	return map[string]interface{}{"enabled": false}
}

// Close 不做任何事
func (Noop) Close() error { return nil }
