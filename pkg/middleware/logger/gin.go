package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/cellbank/pkg/common/uuid"
)

const RequestIDHeader = "X-Request-Id"

// LogWithWriter logs one line per request after the handler chain runs.
func LogWithWriter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		reqID := ctx.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewV4().String()
		}
		ctx.Header(RequestIDHeader, reqID)

		ctx.Next()

		path := ctx.Request.URL.Path
		if raw := ctx.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}
		status := ctx.Writer.Status()
		cost := time.Since(start)
		if len(ctx.Errors) > 0 || status >= 500 {
			Errorf(ctx, "request_id: %s, method: %s, path: %s, status: %d, cost: %s, errors: %s",
				reqID, ctx.Request.Method, path, status, cost, ctx.Errors.String())
			return
		}
		Infof(ctx, "request_id: %s, method: %s, path: %s, status: %d, cost: %s",
			reqID, ctx.Request.Method, path, status, cost)
	}
}
