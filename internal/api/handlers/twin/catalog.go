package twin

import (
	"net/http"
	"strings"

	"flavor-twin/internal/api/handlers"
	"flavor-twin/internal/core/flavor"
	"flavor-twin/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// DishDetail 單道菜的詳細檢視
type DishDetail struct {
	Dish    flavor.Dish    `json:"dish"`
	Vector  flavor.Vector  `json:"vector"`
	Raw     flavor.Vector  `json:"raw"`
	Profile flavor.Profile `json:"profile"`
}

// HandleListCatalog 列出目錄，可用 cuisine 與 q 過濾
func (h *Handler) HandleListCatalog(c *gin.Context) {
	cuisine := strings.TrimSpace(c.Query("cuisine"))
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	cat := h.service.Catalog()
	dishes := make([]flavor.Dish, 0, cat.Len())
	for _, d := range cat.All() {
		if cuisine != "" && !strings.EqualFold(d.Cuisine, cuisine) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(d.Name), q) {
			continue
		}
		dishes = append(dishes, d)
	}

	c.JSON(http.StatusOK, gin.H{
		"source": cat.Source(),
		"count":  len(dishes),
		"dishes": dishes,
	})
}

// HandleGetDish 回傳單道菜與固定縮放的風味向量
func (h *Handler) HandleGetDish(c *gin.Context) {
	d, ok := h.service.Catalog().Get(c.Param("name"))
	if !ok {
		handlers.RespondError(c, common.ErrNotFound, h.debug)
		return
	}

	raw := h.service.Engine().Builder().BuildVector(d.Ingredients)
	c.JSON(http.StatusOK, DishDetail{
		Dish:    d,
		Vector:  flavor.ScaleBounded(raw),
		Raw:     raw,
		Profile: flavor.DescribeProfile(flavor.NormalizeForDisplay(raw)),
	})
}
