package flavor

// Builder 將食材清單轉成原始風味向量
type Builder struct {
	rules *Ruleset
}

// NewBuilder 以指定分類表建立，nil 時使用內建表
func NewBuilder(rules *Ruleset) *Builder {
	if rules == nil {
		rules = DefaultRuleset()
	}
	return &Builder{rules: rules}
}

// Ruleset 回傳使用中的分類表
func (b *Builder) Ruleset() *Ruleset {
	return b.rules
}

// BuildVector 累加每個食材命中的維度權重，結果與食材順序無關。
// 空清單或完全無法辨識的食材得到全零向量。
func (b *Builder) BuildVector(ingredients []string) Vector {
	var v Vector
	for _, ing := range ingredients {
		b.rules.classify(ing, &v)
	}
	return v
}
