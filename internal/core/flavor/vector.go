package flavor

import (
	"encoding/json"
	"fmt"
	"math"
)

// Vector 每個維度的風味強度，固定包含全部維度
type Vector [DimensionCount]float64

// Get 取得某一維度的強度
func (v Vector) Get(d Dimension) float64 {
	return v[d]
}

// IsZero 所有維度皆為 0
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Max 回傳最大強度
func (v Vector) Max() float64 {
	m := 0.0
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	return m
}

// Dot 內積
func (v Vector) Dot(o Vector) float64 {
	var sum float64
	for i := range v {
		sum += v[i] * o[i]
	}
	return sum
}

// Norm 歐幾里得長度
func (v Vector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Map 以維度名稱為鍵輸出，永遠包含全部維度
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, DimensionCount)
	for i, x := range v {
		m[dimensionNames[i]] = x
	}
	return m
}

// MarshalJSON 輸出為 {"Spicy": 1.8, ...}
func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON 接受以維度名稱為鍵的物件，缺少的維度視為 0
func (v *Vector) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Vector
	for name, x := range raw {
		d, err := ParseDimension(name)
		if err != nil {
			return err
		}
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("invalid intensity %v for %s", x, d)
		}
		out[d] = x
	}
	*v = out
	return nil
}
