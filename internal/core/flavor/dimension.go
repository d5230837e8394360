package flavor

import (
	"fmt"
	"strings"
)

// Dimension 風味維度，數值即為在向量中的位置
type Dimension int

// 宣告順序即為排序時的平手規則
const (
	Spicy Dimension = iota
	Sweet
	Sour
	Salty
	Umami
	Bitter
	Aromatic
	Creamy
	Heat
	Fresh

	// DimensionCount 維度總數
	DimensionCount = 10
)

// UniqueTrait 兩道菜沒有任何共同維度時回傳的標記
const UniqueTrait = "Unique"

var dimensionNames = [DimensionCount]string{
	Spicy:    "Spicy",
	Sweet:    "Sweet",
	Sour:     "Sour",
	Salty:    "Salty",
	Umami:    "Umami",
	Bitter:   "Bitter",
	Aromatic: "Aromatic",
	Creamy:   "Creamy",
	Heat:     "Heat",
	Fresh:    "Fresh",
}

// Dimensions 依宣告順序回傳所有維度
func Dimensions() []Dimension {
	dims := make([]Dimension, DimensionCount)
	for i := range dims {
		dims[i] = Dimension(i)
	}
	return dims
}

// DimensionNames 依宣告順序回傳所有維度名稱
func DimensionNames() []string {
	names := make([]string, DimensionCount)
	copy(names, dimensionNames[:])
	return names
}

func (d Dimension) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
	return dimensionNames[d]
}

// Valid 檢查維度是否在表中
func (d Dimension) Valid() bool {
	return d >= 0 && d < DimensionCount
}

// ParseDimension 不分大小寫解析維度名稱
func ParseDimension(name string) (Dimension, error) {
	for i, n := range dimensionNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Dimension(i), nil
		}
	}
	return 0, fmt.Errorf("unknown flavor dimension %q", name)
}
