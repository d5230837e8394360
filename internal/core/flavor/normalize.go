package flavor

// BoundedScaleDivisor 單道菜詳細檢視時，強度達到此值即顯示為 100
const BoundedScaleDivisor = 3.0

// 相似度一律以原始向量計算；以下兩種縮放只用於顯示，不影響排序。

// NormalizeForDisplay 以向量自身最大值縮放到 0–100，維持維度間比例。
// 全零向量維持全零。
func NormalizeForDisplay(v Vector) Vector {
	peak := v.Max()
	if peak == 0 {
		return Vector{}
	}
	var out Vector
	for i, x := range v {
		out[i] = x / peak * 100
	}
	return out
}

// ScaleBounded 與向量自身最大值無關的固定縮放，每個維度上限 100
func ScaleBounded(v Vector) Vector {
	var out Vector
	for i, x := range v {
		scaled := x / BoundedScaleDivisor * 100
		if scaled > 100 {
			scaled = 100
		}
		out[i] = scaled
	}
	return out
}

// Profile 主要與次要風味
type Profile struct {
	Dominant  string `json:"dominant"`
	Secondary string `json:"secondary"`
}

// DescribeProfile 取強度最高的兩個維度，平手依宣告順序。
// 全零向量回傳空 Profile。
func DescribeProfile(v Vector) Profile {
	if v.IsZero() {
		return Profile{}
	}
	first, second := -1, -1
	for i, x := range v {
		switch {
		case first < 0 || x > v[first]:
			second = first
			first = i
		case second < 0 || x > v[second]:
			second = i
		}
	}
	p := Profile{Dominant: Dimension(first).String()}
	if second >= 0 && v[second] > 0 {
		p.Secondary = Dimension(second).String()
	}
	return p
}
