package flavor

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"flavor-twin/internal/pkg/common"
)

// RulesetVersion 內建分類表版本，調整關鍵字或權重時需遞增
const RulesetVersion = "2026.10.2"

// Rule 一組關鍵字對應到一或多個維度的權重。
// 食材名稱（小寫）只要包含任一關鍵字即命中，每條規則對同一食材最多貢獻一次。
// 包含 Exclude 中任一字串的食材不套用此規則，例如 "unsalted" 不算鹹。
type Rule struct {
	Keywords []string
	Exclude  []string
	Weights  map[Dimension]float64
}

// Ruleset 版本化的食材→風味分類表，建立後不可變
type Ruleset struct {
	version string
	rules   []Rule
}

// ruleFile JSON 檔案格式
type ruleFile struct {
	Version string `json:"version"`
	Rules   []struct {
		Keywords []string           `json:"keywords"`
		Exclude  []string           `json:"exclude"`
		Weights  map[string]float64 `json:"weights"`
	} `json:"rules"`
}

// NewRuleset 驗證並建立分類表，關鍵字統一轉為小寫
func NewRuleset(version string, rules []Rule) (*Ruleset, error) {
	if strings.TrimSpace(version) == "" {
		return nil, fmt.Errorf("ruleset version is required")
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("ruleset %s has no rules", version)
	}

	out := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d: no keywords", i)
		}
		if len(r.Weights) == 0 {
			return nil, fmt.Errorf("rule %d: no weights", i)
		}
		keywords, err := lowerTerms(r.Keywords)
		if err != nil {
			return nil, fmt.Errorf("rule %d: keyword: %w", i, err)
		}
		exclude, err := lowerTerms(r.Exclude)
		if err != nil {
			return nil, fmt.Errorf("rule %d: exclude: %w", i, err)
		}
		weights := make(map[Dimension]float64, len(r.Weights))
		for d, w := range r.Weights {
			if !d.Valid() {
				return nil, fmt.Errorf("rule %d: invalid dimension %d", i, int(d))
			}
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("rule %d: invalid weight %v for %s", i, w, d)
			}
			weights[d] = w
		}
		out = append(out, Rule{Keywords: keywords, Exclude: exclude, Weights: weights})
	}

	return &Ruleset{version: version, rules: out}, nil
}

func lowerTerms(terms []string) ([]string, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			return nil, fmt.Errorf("empty term")
		}
		out = append(out, t)
	}
	return out, nil
}

// LoadRuleset 從 JSON 讀取分類表（禁止未知欄位）
func LoadRuleset(r io.Reader) (*Ruleset, error) {
	var f ruleFile
	if err := common.DecodeJSONStrict(r, &f); err != nil {
		return nil, fmt.Errorf("failed to decode ruleset: %w", err)
	}

	rules := make([]Rule, 0, len(f.Rules))
	for i, fr := range f.Rules {
		weights := make(map[Dimension]float64, len(fr.Weights))
		for name, w := range fr.Weights {
			d, err := ParseDimension(name)
			if err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
			weights[d] = w
		}
		rules = append(rules, Rule{Keywords: fr.Keywords, Exclude: fr.Exclude, Weights: weights})
	}
	return NewRuleset(f.Version, rules)
}

// LoadRulesetFile 從檔案讀取分類表
func LoadRulesetFile(path string) (*Ruleset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ruleset file: %w", err)
	}
	defer f.Close()
	return LoadRuleset(f)
}

// Version 分類表版本
func (rs *Ruleset) Version() string {
	return rs.version
}

// Len 規則數量
func (rs *Ruleset) Len() int {
	return len(rs.rules)
}

// Rules 回傳規則副本
func (rs *Ruleset) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// classify 將單一食材命中的所有規則權重累加到 v
func (rs *Ruleset) classify(ingredient string, v *Vector) {
	name := strings.ToLower(ingredient)
	for _, r := range rs.rules {
		if !r.matches(name) {
			continue
		}
		for d, w := range r.Weights {
			v[d] += w
		}
	}
}

func (r Rule) matches(lowered string) bool {
	for _, x := range r.Exclude {
		if strings.Contains(lowered, x) {
			return false
		}
	}
	for _, k := range r.Keywords {
		if strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}

// DefaultRuleset 內建分類表
func DefaultRuleset() *Ruleset {
	rs, err := NewRuleset(RulesetVersion, defaultRules)
	if err != nil {
		panic(fmt.Sprintf("flavor: invalid built-in ruleset: %v", err))
	}
	return rs
}

type dw = map[Dimension]float64

// defaultRules 內建食材分類。關鍵字以子字串比對，
// 因此避免 "pea"、"egg"、"pepper" 這類會誤中其他食材的短字。
var defaultRules = []Rule{
	// 辣椒類
	{Keywords: []string{"chili", "chilli", "chile", "cayenne", "jalapeno", "jalapeño", "habanero", "sriracha", "gochujang", "harissa", "sambal", "red curry paste"},
		Weights: dw{Spicy: 1.0, Heat: 0.8}},
	{Keywords: []string{"black pepper", "white pepper", "peppercorn", "sichuan pepper", "szechuan pepper"},
		Weights: dw{Spicy: 0.5, Heat: 0.4, Aromatic: 0.2}},
	{Keywords: []string{"wasabi", "horseradish", "mustard"},
		Weights: dw{Spicy: 0.7, Heat: 0.9}},
	{Keywords: []string{"paprika"},
		Weights: dw{Spicy: 0.3, Heat: 0.3, Aromatic: 0.5}},
	{Keywords: []string{"ginger", "galangal"},
		Weights: dw{Heat: 0.6, Aromatic: 0.6, Fresh: 0.2}},

	// 香料
	{Keywords: []string{"garam masala", "cumin", "coriander", "cinnamon", "cardamom", "star anise", "curry", "five spice", "nutmeg", "saffron", "allspice", "za'atar", "sumac"},
		Weights: dw{Aromatic: 0.9, Heat: 0.4}},
	{Keywords: []string{"turmeric"},
		Weights: dw{Aromatic: 0.5, Bitter: 0.3, Heat: 0.2}},
	{Keywords: []string{"garlic"},
		Weights: dw{Aromatic: 0.7, Umami: 0.2, Heat: 0.2}},
	{Keywords: []string{"onion", "shallot", "leek"},
		Weights: dw{Aromatic: 0.5, Sweet: 0.3}},

	// 香草
	{Keywords: []string{"basil", "cilantro", "mint", "parsley", "dill", "thyme", "rosemary", "oregano", "lemongrass", "kaffir", "scallion", "chive", "tarragon"},
		Weights: dw{Fresh: 0.8, Aromatic: 0.6}},

	// 酸
	{Keywords: []string{"lemon", "lime", "yuzu", "citrus", "orange", "grapefruit", "tamarind"},
		Weights: dw{Sour: 1.0, Aromatic: 0.4, Fresh: 0.3}},
	{Keywords: []string{"vinegar", "pickle", "sauerkraut", "kimchi", "ponzu"},
		Weights: dw{Sour: 0.9, Umami: 0.2}},
	{Keywords: []string{"yogurt", "yoghurt", "sour cream", "buttermilk", "kefir", "labneh"},
		Weights: dw{Sour: 0.4, Creamy: 0.8}},
	{Keywords: []string{"tomato"},
		Weights: dw{Sour: 0.5, Umami: 0.6, Sweet: 0.3}},
	{Keywords: []string{"wine"},
		Weights: dw{Sour: 0.3, Aromatic: 0.3, Bitter: 0.1}},

	// 甜
	{Keywords: []string{"sugar", "honey", "maple", "syrup", "molasses", "jaggery", "mirin", "caramel", "condensed milk"},
		Weights: dw{Sweet: 1.0}},
	{Keywords: []string{"mango", "apple", "banana", "date", "raisin", "berry", "berries", "peach", "plum", "fig"},
		Weights: dw{Sweet: 0.8, Fresh: 0.3, Sour: 0.2}},
	{Keywords: []string{"coconut"},
		Weights: dw{Sweet: 0.4, Creamy: 0.8, Aromatic: 0.3}},
	{Keywords: []string{"bell pepper", "capsicum", "carrot", "sweet potato", "sweet corn", "corn kernel", "pumpkin", "squash", "beetroot"},
		Weights: dw{Sweet: 0.5, Fresh: 0.4}},

	// 鹹與鮮
	{Keywords: []string{"salt"},
		Exclude: []string{"unsalted", "salt-free", "salt free", "low salt", "low-salt"},
		Weights: dw{Salty: 1.0}},
	{Keywords: []string{"soy sauce", "tamari", "fish sauce", "miso", "anchov", "oyster sauce", "shrimp paste", "doenjang", "worcestershire"},
		Weights: dw{Salty: 0.8, Umami: 0.9}},
	{Keywords: []string{"bacon", "ham", "prosciutto", "pancetta", "chorizo", "sausage", "salami"},
		Exclude: []string{"champignon", "graham", "chamomile", "champagne"},
		Weights: dw{Salty: 0.6, Umami: 0.6}},
	{Keywords: []string{"olives", "kalamata", "caper", "feta", "halloumi"},
		Weights: dw{Salty: 0.6, Sour: 0.2}},
	{Keywords: []string{"parmesan", "pecorino", "cheese", "cheddar", "mozzarella", "paneer", "gruyere"},
		Weights: dw{Umami: 0.6, Salty: 0.4, Creamy: 0.4}},
	{Keywords: []string{"mushroom", "champignon", "shiitake", "porcini", "truffle"},
		Weights: dw{Umami: 0.9, Aromatic: 0.2}},
	{Keywords: []string{"beef", "lamb", "pork", "mutton", "veal", "duck"},
		Weights: dw{Umami: 0.7}},
	{Keywords: []string{"chicken", "turkey"},
		Weights: dw{Umami: 0.5}},
	{Keywords: []string{"fish", "salmon", "tuna", "cod", "shrimp", "prawn", "crab", "squid", "clam", "mussel", "scallop"},
		Weights: dw{Umami: 0.6, Salty: 0.2}},
	{Keywords: []string{"stock", "broth", "dashi", "bouillon", "seaweed", "nori", "kombu", "bonito"},
		Weights: dw{Umami: 0.8, Salty: 0.3}},

	// 苦
	{Keywords: []string{"coffee", "espresso", "cocoa", "dark chocolate", "matcha", "beer"},
		Weights: dw{Bitter: 0.8, Aromatic: 0.3}},
	{Keywords: []string{"chocolate"},
		Weights: dw{Sweet: 0.5, Bitter: 0.4, Creamy: 0.3}},
	{Keywords: []string{"kale", "radicchio", "arugula", "endive", "bitter melon", "broccoli rabe", "fenugreek"},
		Weights: dw{Bitter: 0.7, Fresh: 0.3}},
	{Keywords: []string{"eggplant", "aubergine"},
		Weights: dw{Bitter: 0.3, Creamy: 0.3, Umami: 0.2}},

	// 濃郁
	{Keywords: []string{"cream", "milk", "ghee", "mascarpone", "ricotta", "custard"},
		Weights: dw{Creamy: 1.0}},
	{Keywords: []string{"butter"},
		Weights: dw{Creamy: 0.8, Sweet: 0.1}},
	{Keywords: []string{"avocado", "tahini", "peanut", "cashew", "almond", "sesame", "mayonnaise", "egg yolk"},
		Weights: dw{Creamy: 0.6, Umami: 0.2}},

	// 熱與烤
	{Keywords: []string{"smoked", "grilled", "roasted", "charred", "chipotle", "barbecue", "bbq"},
		Weights: dw{Heat: 0.5, Umami: 0.3, Bitter: 0.1}},

	// 清爽
	{Keywords: []string{"cucumber", "lettuce", "cabbage", "bean sprout", "celery", "radish", "zucchini", "spinach", "watercress", "green papaya", "snow pea", "edamame"},
		Weights: dw{Fresh: 0.9}},
	{Keywords: []string{"olive oil"},
		Weights: dw{Fresh: 0.2, Bitter: 0.1}},
}
