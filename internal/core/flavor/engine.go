package flavor

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultK 未指定時回傳的分身數量
const DefaultK = 3

// ErrUndefinedIngredients 菜餚的食材清單未定義，屬於呼叫端的契約錯誤
var ErrUndefinedIngredients = errors.New("dish ingredients are undefined")

// Stage 比對流程的階段，僅供訂閱者顯示進度
type Stage string

const (
	StageLocatingSource    Stage = "locating_source"
	StageParsingRecipe     Stage = "parsing_recipe"
	StageMappingDimensions Stage = "mapping_dimensions"
	StageScanning          Stage = "scanning"
	StageFinalizing        Stage = "finalizing"
)

// ProgressFunc 進度回呼
type ProgressFunc func(Stage)

// Engine 風味分身比對引擎。只持有不可變的分類表，可安全併發使用。
type Engine struct {
	builder  *Builder
	progress ProgressFunc
}

// Option 引擎選項
type Option func(*Engine)

// WithRuleset 使用自訂分類表
func WithRuleset(rs *Ruleset) Option {
	return func(e *Engine) {
		if rs != nil {
			e.builder = NewBuilder(rs)
		}
	}
}

// NewEngine 建立引擎
func NewEngine(opts ...Option) *Engine {
	e := &Engine{builder: NewBuilder(nil)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithProgress 回傳帶有進度回呼的副本，原引擎不受影響
func (e *Engine) WithProgress(fn ProgressFunc) *Engine {
	cp := *e
	cp.progress = fn
	return &cp
}

// Builder 回傳向量建構器
func (e *Engine) Builder() *Builder {
	return e.builder
}

// Validate 檢查菜餚是否可進入引擎
func Validate(d Dish) error {
	if d.Ingredients == nil {
		return fmt.Errorf("%q: %w", d.Name, ErrUndefinedIngredients)
	}
	return nil
}

// FindTwins 在目錄中找出與來源菜餚最相近、且菜系不同的 k 道菜。
// 目錄順序為同分時的排序依據；沒有候選時回傳空切片。
func (e *Engine) FindTwins(source Dish, catalog []Dish, k int) ([]MatchResult, error) {
	if err := Validate(source); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = DefaultK
	}

	e.report(StageMappingDimensions)
	sourceVec := e.builder.BuildVector(source.Ingredients)

	e.report(StageScanning)
	results := make([]MatchResult, 0, len(catalog))
	for _, cand := range catalog {
		if !eligible(source, cand) {
			continue
		}
		if err := Validate(cand); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		candVec := e.builder.BuildVector(cand.Ingredients)
		s := ScoreVectors(sourceVec, candVec, source.Nutrients, cand.Nutrients)
		results = append(results, MatchResult{
			Dish:         cand,
			Similarity:   Percent(s.Total),
			FlavorSim:    Percent(s.FlavorSim),
			NutMatch:     Percent(s.NutMatch),
			SharedTraits: SharedTraits(sourceVec, candVec),
		})
	}

	e.report(StageFinalizing)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// eligible 名稱（不分大小寫）與菜系都必須和來源不同
func eligible(source, cand Dish) bool {
	return !strings.EqualFold(cand.Name, source.Name) && cand.Cuisine != source.Cuisine
}

func (e *Engine) report(s Stage) {
	if e.progress != nil {
		e.progress(s)
	}
}
