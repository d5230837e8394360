package catalog

import (
	"fmt"
	"strings"

	"flavor-twin/internal/core/flavor"
)

// Catalog 已載入並驗證的菜餚目錄，建立後唯讀
type Catalog struct {
	source string
	dishes []flavor.Dish
}

// New 驗證並建立目錄。名稱為空或食材未定義的菜餚視為資料錯誤；
// 名稱重複（不分大小寫）時保留第一筆。
func New(source string, dishes []flavor.Dish) (*Catalog, error) {
	seen := make(map[string]struct{}, len(dishes))
	out := make([]flavor.Dish, 0, len(dishes))
	for i, d := range dishes {
		d.Name = strings.TrimSpace(d.Name)
		if d.Name == "" {
			return nil, fmt.Errorf("catalog %s: dish %d has no name", source, i)
		}
		if err := flavor.Validate(d); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", source, err)
		}
		key := strings.ToLower(d.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return &Catalog{source: source, dishes: out}, nil
}

// Source 資料來源名稱
func (c *Catalog) Source() string {
	return c.source
}

// Len 菜餚數量
func (c *Catalog) Len() int {
	return len(c.dishes)
}

// All 依目錄順序回傳所有菜餚（副本）
func (c *Catalog) All() []flavor.Dish {
	out := make([]flavor.Dish, len(c.dishes))
	copy(out, c.dishes)
	return out
}

// Find 名稱包含查詢字串（不分大小寫）的第一道菜
func (c *Catalog) Find(query string) (flavor.Dish, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return flavor.Dish{}, false
	}
	for _, d := range c.dishes {
		if strings.Contains(strings.ToLower(d.Name), q) {
			return d, true
		}
	}
	return flavor.Dish{}, false
}

// Get 名稱完全相同（不分大小寫）的菜餚
func (c *Catalog) Get(name string) (flavor.Dish, bool) {
	name = strings.TrimSpace(name)
	for _, d := range c.dishes {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return flavor.Dish{}, false
}
