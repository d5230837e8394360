package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	API         APIConfig       `mapstructure:"api"`
	Provider    ProviderConfig  `mapstructure:"provider"`
	Catalog     CatalogConfig   `mapstructure:"catalog"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Cache       CacheConfig     `mapstructure:"cache"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Flavor      FlavorConfig    `mapstructure:"flavor"`
	Match       MatchConfig     `mapstructure:"match"`
	Log         LogConfig       `mapstructure:"log"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// APIConfig HTTP 介面設定
type APIConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	MaxTraits      int           `mapstructure:"max_traits"`
	AllowOrigins   []string      `mapstructure:"allow_origins"`
}

// ProviderConfig 外部食譜服務設定
type ProviderConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
	RetryWait  time.Duration `mapstructure:"retry_wait"`
}

// 目錄來源
const (
	CatalogSourceEmbedded = "embedded"
	CatalogSourceFile     = "file"
	CatalogSourceDatabase = "database"
)

// CatalogConfig 菜餚目錄設定
type CatalogConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

// DatabaseConfig 資料庫設定
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// 快取後端
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// FlavorConfig 風味分類設定，RulesetPath 為空時使用內建表
type FlavorConfig struct {
	RulesetPath string `mapstructure:"ruleset_path"`
}

// MatchConfig 比對設定
type MatchConfig struct {
	DefaultK int `mapstructure:"default_k"`
	MaxK     int `mapstructure:"max_k"`
}

// LogConfig 日誌設定
type LogConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoadConfig 載入設定（.env 可有可無）
func LoadConfig() (*Config, error) {
	// 加載 .env 文件
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Load(viper.New())
}

// Load 以指定的 viper 實例解析設定
func Load(v *viper.Viper) (*Config, error) {
	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	for key, env := range envAliases {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// envAliases 不帶前綴的常用環境變數
var envAliases = map[string]string{
	"provider.base_url":    "RECIPE_API_URL",
	"provider.api_key":     "RECIPE_API_KEY",
	"provider.enabled":     "RECIPE_API_ENABLED",
	"catalog.source":       "CATALOG_SOURCE",
	"catalog.path":         "CATALOG_PATH",
	"database.driver":      "DB_DRIVER",
	"database.dsn":         "DATABASE_URL",
	"cache.enabled":        "CACHE_ENABLED",
	"cache.backend":        "CACHE_BACKEND",
	"cache.redis_addr":     "REDIS_ADDR",
	"cache.redis_password": "REDIS_PASSWORD",
	"flavor.ruleset_path":  "FLAVOR_RULESET_PATH",
	"rate_limit.enabled":   "RATE_LIMIT_ENABLED",
	"rate_limit.requests":  "RATE_LIMIT_REQUESTS",
	"rate_limit.window":    "RATE_LIMIT_WINDOW",
	"server.port":          "PORT",
	"dedup_window":         "DEDUP_WINDOW",
	"log_level":            "LOG_LEVEL",
	"log.dir":              "LOG_DIR",
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "flavor-twin")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "5s")

	// HTTP 介面
	v.SetDefault("api.request_timeout", "15s")
	v.SetDefault("api.max_body_bytes", 1<<20) // 1MB
	v.SetDefault("api.max_traits", 3)
	v.SetDefault("api.allow_origins", []string{"*"})

	// 食譜服務
	v.SetDefault("provider.enabled", false)
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.timeout", "10s")
	v.SetDefault("provider.retry_count", 2)
	v.SetDefault("provider.retry_wait", "300ms")

	// 目錄
	v.SetDefault("catalog.source", CatalogSourceEmbedded)
	v.SetDefault("catalog.path", "")

	// 資料庫
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key_prefix", "flavor-twin:dish:")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 風味與比對
	v.SetDefault("flavor.ruleset_path", "")
	v.SetDefault("match.default_k", 3)
	v.SetDefault("match.max_k", 20)

	v.SetDefault("log.dir", "logs")
	v.SetDefault("log_level", "info")
	v.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", config.Server.Port)
	}
	if config.API.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid api max body bytes")
	}
	if config.API.MaxTraits <= 0 {
		return fmt.Errorf("invalid api max traits")
	}

	// 驗證食譜服務設定
	if config.Provider.Enabled {
		if config.Provider.BaseURL == "" {
			return fmt.Errorf("provider base url is required when provider is enabled")
		}
		if config.Provider.Timeout <= 0 {
			return fmt.Errorf("invalid provider timeout")
		}
		if config.Provider.RetryCount < 0 {
			return fmt.Errorf("invalid provider retry count")
		}
	}

	// 驗證目錄設定
	switch config.Catalog.Source {
	case CatalogSourceEmbedded:
	case CatalogSourceFile:
		if config.Catalog.Path == "" {
			return fmt.Errorf("catalog path is required for file source")
		}
	case CatalogSourceDatabase:
		if config.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for database catalog")
		}
	default:
		return fmt.Errorf("unknown catalog source %q", config.Catalog.Source)
	}

	if config.Database.DSN != "" {
		switch config.Database.Driver {
		case "postgres", "sqlite":
		default:
			return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
		}
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case CacheBackendMemory:
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case CacheBackendRedis:
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required for redis cache")
			}
		default:
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	// 驗證限流設定
	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit")
		}
	}

	// 驗證比對設定
	if config.Match.DefaultK <= 0 {
		return fmt.Errorf("invalid match default k")
	}
	if config.Match.MaxK < config.Match.DefaultK {
		return fmt.Errorf("match max k must be >= default k")
	}

	return nil
}
