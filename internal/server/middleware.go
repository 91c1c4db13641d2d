package server

import (
	"time"

	"auction-sync/utils"

	"github.com/gin-gonic/gin"
)

// RequestIDHeader carries the request id on local API responses.
const RequestIDHeader = "X-Request-Id"

// RequestLoggerMiddleware tags the request with an id and logs it with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = utils.RequestID()
	}
	c.Header(RequestIDHeader, id)

	c.Next() // process request

	fields := map[string]any{
		"request_id": id,
		"method":     c.Request.Method,
		"path":       c.FullPath(),
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
	}
	if c.FullPath() == "" {
		fields["path"] = c.Request.URL.Path
	}
	if c.Writer.Status() >= 500 {
		utils.Warn("HTTP Request", fields)
		return
	}
	utils.Info("HTTP Request", fields)
}
