package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/landledger/internal/logger"
)

// LoggerKey is the context key under which the request-scoped logger is stored.
const LoggerKey = "logger"

// Logger creates a middleware that logs HTTP requests using structured logging.
// Requests to paths in quiet are logged at debug level so health checks do not flood the output.
func Logger(log *logger.Logger, quiet ...string) gin.HandlerFunc {
	quietPaths := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		quietPaths[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()

		requestLogger := log.WithRequestID(GetRequestID(c))
		c.Set(LoggerKey, requestLogger)

		c.Next()

		duration := time.Since(start)

		fields := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": duration.Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}

		if len(c.Request.URL.RawQuery) > 0 {
			fields["query"] = c.Request.URL.RawQuery
		}

		statusCode := c.Writer.Status()
		_, isQuiet := quietPaths[c.FullPath()]
		switch {
		case statusCode >= 500:
			if len(c.Errors) > 0 {
				fields["errors"] = c.Errors.String()
			}
			requestLogger.Error("Request completed with server error", nil, fields)
		case statusCode >= 400:
			if len(c.Errors) > 0 {
				fields["errors"] = c.Errors.String()
			}
			requestLogger.Warn("Request completed with client error", fields)
		case isQuiet:
			requestLogger.Debug("Request completed", fields)
		default:
			requestLogger.Info("Request completed", fields)
		}
	}
}

// GetLogger retrieves the logger from the Gin context.
// Returns nil if not found.
func GetLogger(c *gin.Context) *logger.Logger {
	if value, exists := c.Get(LoggerKey); exists {
		if l, ok := value.(*logger.Logger); ok {
			return l
		}
	}
	return nil
}
