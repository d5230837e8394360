package flavor

// 未知營養資訊時的預設值（在邊界層補上）
const (
	DefaultEnergy  = 450
	DefaultProtein = 25
	DefaultCarbs   = 45
)

// Nutrients 營養資訊：熱量 kcal、蛋白質 g、碳水化合物 g
type Nutrients struct {
	Energy  float64 `json:"energy"`
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
}

// DefaultNutrients 回傳預設營養值
func DefaultNutrients() Nutrients {
	return Nutrients{Energy: DefaultEnergy, Protein: DefaultProtein, Carbs: DefaultCarbs}
}

// Dish 標準化後的菜餚。Name 不分大小寫作為識別。
// Nutrients 為 nil 表示沒有營養資料。
type Dish struct {
	Name        string     `json:"name"`
	Ingredients []string   `json:"ingredients"`
	Cuisine     string     `json:"cuisine"`
	Continent   string     `json:"continent"`
	SubRegion   string     `json:"subRegion"`
	Nutrients   *Nutrients `json:"nutrients,omitempty"`
	Image       string     `json:"image,omitempty"`
}

// MatchResult 單一候選菜餚的比對結果，分數皆為 0–100 的整數百分比
type MatchResult struct {
	Dish
	Similarity   int      `json:"similarity"`
	FlavorSim    int      `json:"flavorSim"`
	NutMatch     int      `json:"nutMatch"`
	SharedTraits []string `json:"sharedTraits"`
}

// TopTraits 最多回傳前 n 個共同特徵
func (r MatchResult) TopTraits(n int) []string {
	if n <= 0 || n >= len(r.SharedTraits) {
		return r.SharedTraits
	}
	return r.SharedTraits[:n]
}
