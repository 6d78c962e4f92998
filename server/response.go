package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waqaskhan137/fintips/apperr"
)

// Response is the JSON envelope of every API reply. Code 0 means success.
type Response struct {
	Code    int                    `json:"code"`
	Msg     string                 `json:"msg"`
	Data    interface{}            `json:"data"`
	Error   string                 `json:"error,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Success writes a 200 reply carrying data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: 0,
		Msg:  "success",
		Data: data,
	})
}

// Error writes the reply for err, using the status and code of its AppError.
func Error(c *gin.Context, err error) {
	appErr := apperr.FromError(err)

	attrs := []any{
		"request_id", c.GetString(requestIDKey),
		"code", appErr.Code,
		"path", c.FullPath(),
	}
	if appErr.Err != nil {
		attrs = append(attrs, "error", appErr.Err)
	}
	if appErr.StatusCode >= http.StatusInternalServerError {
		slog.Error("request_error", attrs...)
	} else {
		slog.Warn("request_error", attrs...)
	}

	resp := Response{
		Code:  -1,
		Msg:   appErr.Message,
		Error: appErr.Code,
	}
	if len(appErr.Details) > 0 {
		resp.Details = appErr.Details
	}
	c.AbortWithStatusJSON(appErr.StatusCode, resp)
}
