package twin

import (
	"net/http"

	"flavor-twin/internal/api/handlers"
	"flavor-twin/internal/core/flavor"
	twinService "flavor-twin/internal/core/twin"
	"flavor-twin/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FindTwinsRequest 以菜名查找風味分身
type FindTwinsRequest struct {
	Dish string `json:"dish" binding:"required"`
	K    int    `json:"k"`
}

// MatchRequest 直接提供來源菜餚
type MatchRequest struct {
	Source flavor.Dish `json:"source"`
	K      int         `json:"k"`
}

// Handler 風味分身處理程序
type Handler struct {
	service   *twinService.Service
	maxTraits int
	debug     bool
}

// NewHandler 創建風味分身處理程序
func NewHandler(service *twinService.Service, maxTraits int, debug bool) *Handler {
	return &Handler{
		service:   service,
		maxTraits: maxTraits,
		debug:     debug,
	}
}

// HandleFindTwins 解析菜名並回傳風味分身
func (h *Handler) HandleFindTwins(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req FindTwinsRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}

	common.LogInfo("開始查找風味分身",
		zap.String("request_id", requestID),
		zap.String("dish", req.Dish),
		zap.Int("k", req.K),
	)

	res, err := h.service.FindTwins(c.Request.Context(), req.Dish, req.K, nil)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, h.response(requestID, res))
}

// HandleMatch 以請求中的菜餚直接比對
func (h *Handler) HandleMatch(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req MatchRequest
	if err := handlers.BindJSON(c, &req); err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}

	res, err := h.service.Match(c.Request.Context(), req.Source, req.K, nil)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}

	c.JSON(http.StatusOK, h.response(requestID, res))
}

func (h *Handler) response(requestID string, res *twinService.Result) TwinsResponse {
	return TwinsResponse{
		RequestID: requestID,
		Source:    res.Source,
		Twins:     toTwinViews(h.service.Engine().Builder(), res.Twins, h.maxTraits),
	}
}
