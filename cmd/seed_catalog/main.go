package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"flavor-twin/internal/core/catalog"
	"flavor-twin/internal/infrastructure/config"
	"flavor-twin/internal/infrastructure/database"
	"flavor-twin/internal/pkg/common"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// seed_catalog 將菜餚目錄（內建或 JSON 檔）寫入資料庫的 catalog_dishes
func main() {
	file := pflag.StringP("file", "f", "", "catalog JSON file (default: embedded universe)")
	offset := pflag.Int("offset", 0, "starting position for seeded dishes")
	timeout := pflag.Duration("timeout", time.Minute, "seed timeout")
	pflag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := common.InitLogger(cfg.LogLevel, cfg.Log.Dir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	if cfg.Database.DSN == "" {
		common.LogFatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var src catalog.Source = catalog.EmbeddedSource{}
	if *file != "" {
		src = catalog.FileSource{Path: *file}
	}

	// 先經過目錄驗證與去重
	cat, err := catalog.Load(ctx, src)
	if err != nil {
		common.LogFatal("讀取目錄失敗", zap.String("source", src.Name()), zap.Error(err))
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		common.LogFatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := catalog.Migrate(db); err != nil {
		common.LogFatal("資料表遷移失敗", zap.Error(err))
	}

	n, err := catalog.Seed(ctx, db, cat.All(), *offset)
	if err != nil {
		common.LogFatal("寫入目錄失敗", zap.Error(err))
	}

	common.LogInfo("目錄寫入完成",
		zap.String("source", src.Name()),
		zap.String("driver", cfg.Database.Driver),
		zap.Int("dishes", n),
	)
}
