package handlers

import (
	"context"
	"errors"

	"flavor-twin/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestID 取得本次請求 ID，中間件未設置時產生新的
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	if id := common.RequestIDFromContext(c.Request.Context()); id != "" {
		return id
	}
	id := common.GenerateUUID()
	c.Header("X-Request-ID", id)
	return id
}

// RespondError 將錯誤轉為 JSON 響應，debug 模式附上原始錯誤
func RespondError(c *gin.Context, err error, debug bool) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		err = common.ErrGatewayTimeout.Wrap(err)
	case errors.Is(err, context.Canceled):
		err = common.ErrRequestTimeout.Wrap(err)
	}

	status, resp := common.ToResponse(err, debug)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("code", resp.Code),
		zap.String("request_id", RequestID(c)),
	}
	if status >= 500 {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// BindJSON 解析請求體，失敗時回傳驗證錯誤
func BindJSON(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return common.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}
