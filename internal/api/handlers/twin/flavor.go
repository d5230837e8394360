package twin

import (
	"net/http"

	"flavor-twin/internal/api/handlers"
	"flavor-twin/internal/core/flavor"

	"github.com/gin-gonic/gin"
)

// VectorRequest 計算食材清單的風味向量
type VectorRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"`
}

// VectorResponse 原始、顯示用與固定縮放三種向量
type VectorResponse struct {
	Raw     flavor.Vector  `json:"raw"`
	Display flavor.Vector  `json:"display"`
	Bounded flavor.Vector  `json:"bounded"`
	Profile flavor.Profile `json:"profile"`
	Ruleset string         `json:"ruleset_version"`
}

// HandleVector 計算風味向量
func (h *Handler) HandleVector(c *gin.Context) {
	var req VectorRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}

	b := h.service.Engine().Builder()
	raw := b.BuildVector(req.Ingredients)
	display := flavor.NormalizeForDisplay(raw)

	c.JSON(http.StatusOK, VectorResponse{
		Raw:     raw,
		Display: display,
		Bounded: flavor.ScaleBounded(raw),
		Profile: flavor.DescribeProfile(display),
		Ruleset: b.Ruleset().Version(),
	})
}

// HandleDimensions 列出所有風味維度
func (h *Handler) HandleDimensions(c *gin.Context) {
	rs := h.service.Engine().Builder().Ruleset()
	c.JSON(http.StatusOK, gin.H{
		"dimensions":      flavor.DimensionNames(),
		"ruleset_version": rs.Version(),
		"rules":           rs.Len(),
	})
}
