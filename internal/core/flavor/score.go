package flavor

import "math"

// 綜合分數權重：風味為主，營養為輔
const (
	FlavorWeight    = 0.7
	NutritionWeight = 0.3

	// MissingNutrientsMatch 候選菜餚沒有營養資料時的營養相似度
	MissingNutrientsMatch = 0.8
)

// Score 兩道菜的相似度，皆為 0..1
type Score struct {
	FlavorSim float64 `json:"flavorSim"`
	NutMatch  float64 `json:"nutMatch"`
	Total     float64 `json:"total"`
}

// CosineSimilarity 兩個原始向量的餘弦相似度；任一為零向量時為 0
func CosineSimilarity(a, b Vector) float64 {
	denom := a.Norm() * b.Norm()
	if denom == 0 {
		return 0
	}
	return clamp01(a.Dot(b) / denom)
}

// NutritionalParity 1 − (|ΔE|/1000 + |ΔP|/100 + |ΔC|/200)/3，限制在 [0,1]。
// candidate 為 nil 時回傳 MissingNutrientsMatch。
func NutritionalParity(source Nutrients, candidate *Nutrients) float64 {
	if candidate == nil {
		return MissingNutrientsMatch
	}
	diff := math.Abs(candidate.Energy-source.Energy)/1000 +
		math.Abs(candidate.Protein-source.Protein)/100 +
		math.Abs(candidate.Carbs-source.Carbs)/200
	return clamp01(1 - diff/3)
}

// Combine 以固定權重合併風味與營養相似度
func Combine(flavorSim, nutMatch float64) float64 {
	return FlavorWeight*flavorSim + NutritionWeight*nutMatch
}

// ScoreVectors 以已建好的原始向量計分。來源沒有營養資料時使用預設值。
func ScoreVectors(source, candidate Vector, sourceNutrients, candidateNutrients *Nutrients) Score {
	src := DefaultNutrients()
	if sourceNutrients != nil {
		src = *sourceNutrients
	}
	s := Score{
		FlavorSim: CosineSimilarity(source, candidate),
		NutMatch:  NutritionalParity(src, candidateNutrients),
	}
	s.Total = Combine(s.FlavorSim, s.NutMatch)
	return s
}

// Score 建立兩道菜的原始向量並計分
func (b *Builder) Score(source, candidate Dish) Score {
	return ScoreVectors(
		b.BuildVector(source.Ingredients),
		b.BuildVector(candidate.Ingredients),
		source.Nutrients,
		candidate.Nutrients,
	)
}

// Percent 四捨五入為整數百分比
func Percent(x float64) int {
	return int(math.Round(x * 100))
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
