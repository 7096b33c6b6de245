package middleware

import (
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/gin-gonic/gin"
)

const (
	// RequestIDHeader is read from the request and echoed on the response
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey stores the id in the gin context
	RequestIDKey = "request_id"
)

// RequestID propagates the caller's request id or assigns a fresh one
func RequestID(ids coreport.IDGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = ids.NewID()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
