package flavor

import "sort"

// SharedTraits 兩個向量皆為正值的維度，依兩者強度總和由高到低排序，
// 平手依維度宣告順序。沒有共同維度時回傳 ["Unique"]。
func SharedTraits(source, candidate Vector) []string {
	shared := make([]Dimension, 0, DimensionCount)
	for _, d := range Dimensions() {
		if source[d] > 0 && candidate[d] > 0 {
			shared = append(shared, d)
		}
	}
	if len(shared) == 0 {
		return []string{UniqueTrait}
	}

	sort.SliceStable(shared, func(i, j int) bool {
		a, b := shared[i], shared[j]
		return source[a]+candidate[a] > source[b]+candidate[b]
	})

	traits := make([]string, len(shared))
	for i, d := range shared {
		traits[i] = d.String()
	}
	return traits
}
