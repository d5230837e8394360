package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"flavor-twin/internal/core/flavor"
	"flavor-twin/internal/pkg/common"

	"go.uber.org/zap"
)

//go:embed data/universe.json
var universeJSON []byte

// Source 菜餚目錄來源
type Source interface {
	Name() string
	Load(ctx context.Context) ([]flavor.Dish, error)
}

// Load 從來源讀取並建立目錄
func Load(ctx context.Context, src Source) (*Catalog, error) {
	dishes, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", src.Name(), err)
	}
	c, err := New(src.Name(), dishes)
	if err != nil {
		return nil, err
	}
	common.LogInfo("菜餚目錄已載入",
		zap.String("來源", src.Name()),
		zap.Int("數量", c.Len()),
	)
	return c, nil
}

// ParseDishes 解析 JSON 陣列格式的菜餚清單。
// 缺少 ingredients 的項目保持 nil，由 New 拒絕；明確的 [] 為合法空清單。
func ParseDishes(r io.Reader) ([]flavor.Dish, error) {
	var dishes []flavor.Dish
	if err := common.DecodeJSONStrict(r, &dishes); err != nil {
		return nil, fmt.Errorf("failed to decode dishes: %w", err)
	}
	return dishes, nil
}

// EmbeddedSource 內建的預設菜餚宇宙
type EmbeddedSource struct{}

// Name 來源名稱
func (EmbeddedSource) Name() string { return "embedded" }

// Load 解析內建資料
func (EmbeddedSource) Load(ctx context.Context) ([]flavor.Dish, error) {
	return ParseDishes(bytes.NewReader(universeJSON))
}

// FileSource 從 JSON 檔案讀取
type FileSource struct {
	Path string
}

// Name 來源名稱
func (s FileSource) Name() string { return "file:" + s.Path }

// Load 讀取檔案
func (s FileSource) Load(ctx context.Context) ([]flavor.Dish, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()
	return ParseDishes(f)
}
