package provider

import (
	"context"
)

// CandidateStub 搜尋結果中的候選食譜。Raw 保留原始搜尋結果，
// 詳細資料缺少的欄位（例如營養、地區）會從這裡補上。
type CandidateStub struct {
	ID      string                 `json:"id"`
	Title   string                 `json:"title"`
	Image   string                 `json:"image,omitempty"`
	Cuisine string                 `json:"cuisine,omitempty"`
	Raw     map[string]interface{} `json:"-"`
}

// RawRecipe 食譜服務回傳的原始詳細資料，欄位名稱依來源而異，
// 只在 ToDish 中解讀
type RawRecipe map[string]interface{}

// RecipeProvider 外部食譜查詢介面
type RecipeProvider interface {
	// SearchByTitle 以名稱搜尋，沒有結果時回傳空切片
	SearchByTitle(ctx context.Context, query string) ([]CandidateStub, error)

	// GetDetail 取得單一食譜詳細資料，找不到時回傳 nil
	GetDetail(ctx context.Context, id string) (RawRecipe, error)
}
