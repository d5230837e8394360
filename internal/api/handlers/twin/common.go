package twin

import (
	"flavor-twin/internal/core/flavor"
	twinService "flavor-twin/internal/core/twin"
)

// TwinView 對外輸出的分身，共同特徵最多 maxTraits 個
type TwinView struct {
	flavor.MatchResult
	Vector flavor.Vector `json:"vector"`
}

// TwinsResponse 比對結果
type TwinsResponse struct {
	RequestID string                    `json:"request_id"`
	Source    twinService.SourceProfile `json:"source"`
	Twins     []TwinView                `json:"twins"`
}

func toTwinViews(b *flavor.Builder, results []flavor.MatchResult, maxTraits int) []TwinView {
	views := make([]TwinView, len(results))
	for i, r := range results {
		r.SharedTraits = r.TopTraits(maxTraits)
		views[i] = TwinView{
			MatchResult: r,
			Vector:      flavor.ScaleBounded(b.BuildVector(r.Ingredients)),
		}
	}
	return views
}
