package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/propbill/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	HeaderRequestID     = "X-Request-Id"
	HeaderCorrelationID = "X-Correlation-Id"
)

// MiddlewareConfig controls request logging behavior.
type MiddlewareConfig struct {
	Debug           bool
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware stamps request and correlation ids on the request context,
// echoes them back as headers and writes one access log line per request.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := obscontext.WithRequestID(c.Request.Context(), requestID)
		ctx = obscontext.WithCorrelationID(ctx, c.GetHeader(HeaderCorrelationID))
		ctx, correlationID := obscontext.EnsureCorrelationID(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderCorrelationID, correlationID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		size := c.Writer.Size()
		if size < 0 {
			size = 0
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Int("bytes_out", size),
		}
		if lastErr := c.Errors.Last(); lastErr != nil {
			fields = append(fields, errorFields(cfg, lastErr.Err)...)
		}

		FromContext(c.Request.Context()).Log(accessLevel(route, status), "http_request", fields...)
	}
}

func errorFields(cfg MiddlewareConfig, err error) []zap.Field {
	var errorType, errorCode string
	if cfg.ErrorClassifier != nil {
		errorType, errorCode = cfg.ErrorClassifier(err)
	}
	fields := []zap.Field{
		zap.String("error_type", errorType),
		zap.String("error_code", errorCode),
	}
	if cfg.Debug {
		fields = append(fields, zap.Error(err))
	}
	return fields
}

func accessLevel(route string, status int) zapcore.Level {
	switch {
	case route == "/metrics" || route == "/health":
		return zapcore.DebugLevel
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status == http.StatusTooManyRequests || status == http.StatusConflict:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
