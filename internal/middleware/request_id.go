package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the gin context key holding the request ID.
	RequestIDKey = "request_id"
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLength = 128
)

// RequestID tags every request with an ID, echoed in the response header and
// attached to every log line and error body. An ID sent by an upstream proxy
// is kept when it is short printable ASCII without spaces; otherwise a UUID
// is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !usableRequestID(requestID) {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

// GetRequestID returns the request ID, or "" outside the RequestID middleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
