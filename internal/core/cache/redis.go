package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flavor-twin/internal/core/flavor"
	"flavor-twin/internal/infrastructure/config"
	"flavor-twin/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Redis 跨實例共用的菜餚快取
type Redis struct {
	client *redis.Client
	config config.CacheConfig
}

var _ DishCache = (*Redis)(nil)

// NewRedis 連線 Redis 並確認可用
func NewRedis(cfg config.CacheConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB),
		zap.Duration("存活時間", cfg.TTL),
	)

	return &Redis{client: client, config: cfg}, nil
}

// Get 獲取緩存
func (s *Redis) Get(ctx context.Context, query string) (flavor.Dish, error) {
	key := s.key(query)

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			common.LogCacheMiss("redis", key)
			return flavor.Dish{}, common.ErrCacheMiss
		}
		return flavor.Dish{}, fmt.Errorf("failed to get cache: %w", err)
	}

	var dish flavor.Dish
	if err := json.Unmarshal(data, &dish); err != nil {
		return flavor.Dish{}, fmt.Errorf("failed to unmarshal cache: %w", err)
	}

	common.LogCacheHit("redis", key)
	return dish, nil
}

// Set 設置緩存
func (s *Redis) Set(ctx context.Context, query string, dish flavor.Dish) error {
	data, err := json.Marshal(dish)
	if err != nil {
		return fmt.Errorf("failed to marshal dish: %w", err)
	}

	if err := s.client.Set(ctx, s.key(query), data, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats Redis 端統計不在此收集
func (s *Redis) Stats() map[string]interface{} {
	return map[string]interface{}{
		"backend": config.CacheBackendRedis,
		"addr":    s.config.RedisAddr,
	}
}

// Close 關閉連線
func (s *Redis) Close() error {
	return s.client.Close()
}

func (s *Redis) key(query string) string {
	return s.config.KeyPrefix + generateKey(query)
}
