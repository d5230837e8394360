package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flavor-twin/internal/core/flavor"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DishRecord catalog_dishes 資料表。Position 保存目錄順序，
// 同分時的排序依賴這個順序。
type DishRecord struct {
	ID          uint     `gorm:"primaryKey"`
	NameKey     string   `gorm:"size:255;uniqueIndex;not null"`
	Name        string   `gorm:"size:255;not null"`
	Position    int      `gorm:"index;not null"`
	Ingredients []string `gorm:"serializer:json;not null"`
	Cuisine     string   `gorm:"size:128"`
	Continent   string   `gorm:"size:128"`
	SubRegion   string   `gorm:"size:128"`
	Image       string   `gorm:"size:1024"`
	Energy      *float64
	Protein     *float64
	Carbs       *float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 資料表名稱
func (DishRecord) TableName() string {
	return "catalog_dishes"
}

// ToDish 轉為核心菜餚。三個營養欄位皆有值時才視為有營養資料；
// ingredients 欄位為 NULL 或 null 時回傳 ErrUndefinedIngredients。
func (r DishRecord) ToDish() (flavor.Dish, error) {
	if r.Ingredients == nil {
		return flavor.Dish{}, fmt.Errorf("catalog_dishes %d (%q): %w", r.ID, r.Name, flavor.ErrUndefinedIngredients)
	}
	d := flavor.Dish{
		Name:        r.Name,
		Ingredients: r.Ingredients,
		Cuisine:     r.Cuisine,
		Continent:   r.Continent,
		SubRegion:   r.SubRegion,
		Image:       r.Image,
	}
	if r.Energy != nil && r.Protein != nil && r.Carbs != nil {
		d.Nutrients = &flavor.Nutrients{Energy: *r.Energy, Protein: *r.Protein, Carbs: *r.Carbs}
	}
	return d, nil
}

// NewDishRecord 由核心菜餚建立資料列，呼叫端需先以 flavor.Validate 驗證
func NewDishRecord(d flavor.Dish, position int) DishRecord {
	r := DishRecord{
		NameKey:     strings.ToLower(strings.TrimSpace(d.Name)),
		Name:        strings.TrimSpace(d.Name),
		Position:    position,
		Ingredients: d.Ingredients,
		Cuisine:     d.Cuisine,
		Continent:   d.Continent,
		SubRegion:   d.SubRegion,
		Image:       d.Image,
	}
	if d.Nutrients != nil {
		e, p, c := d.Nutrients.Energy, d.Nutrients.Protein, d.Nutrients.Carbs
		r.Energy, r.Protein, r.Carbs = &e, &p, &c
	}
	return r
}

// SQLSource 從資料庫讀取目錄
type SQLSource struct {
	DB *gorm.DB
}

// Name 來源名稱
func (s SQLSource) Name() string {
	return "database:" + s.DB.Dialector.Name()
}

// Load 依 position 順序讀取所有菜餚
func (s SQLSource) Load(ctx context.Context) ([]flavor.Dish, error) {
	var records []DishRecord
	if err := s.DB.WithContext(ctx).Order("position, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query catalog dishes: %w", err)
	}
	dishes := make([]flavor.Dish, len(records))
	for i, r := range records {
		d, err := r.ToDish()
		if err != nil {
			return nil, err
		}
		dishes[i] = d
	}
	return dishes, nil
}

// Migrate 建立或更新 catalog_dishes
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&DishRecord{})
}

// Seed 以名稱（不分大小寫）為鍵寫入菜餚，已存在的資料列整筆更新。
// position 從 offset 起依輸入順序遞增。
func Seed(ctx context.Context, db *gorm.DB, dishes []flavor.Dish, offset int) (int, error) {
	if len(dishes) == 0 {
		return 0, nil
	}
	records := make([]DishRecord, 0, len(dishes))
	for i, d := range dishes {
		if err := flavor.Validate(d); err != nil {
			return 0, err
		}
		if strings.TrimSpace(d.Name) == "" {
			return 0, fmt.Errorf("dish %d has no name", i)
		}
		records = append(records, NewDishRecord(d, offset+i))
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "position", "ingredients", "cuisine", "continent",
			"sub_region", "image", "energy", "protein", "carbs", "updated_at",
		}),
	}).CreateInBatches(&records, 100).Error
	if err != nil {
		return 0, fmt.Errorf("failed to seed catalog dishes: %w", err)
	}
	return len(records), nil
}
