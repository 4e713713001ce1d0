package middleware

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"impactdash/domain/core"
)

const (
	// RequestIDHeader carries the request id in and out
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key of the request id
	RequestIDKey = "requestID"

	// ClientCookie identifies a browser for the chat quota
	ClientCookie = "impactdash_client"
	// ClientIDKey is the gin context key of the client id
	ClientIDKey = "clientID"

	clientCookieMaxAge = 365 * 24 * 60 * 60
)

// RequestID reuses an incoming X-Request-ID or assigns a new uuid
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// ClientID makes sure every browser carries a stable anonymous id
func ClientID(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(ClientCookie)
		id, err := core.ParseClientID(raw)
		if err != nil {
			id = core.ClientID(uuid.NewString())
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientCookie, id.String(), clientCookieMaxAge, "/", "", secure, true)
		}
		c.Set(ClientIDKey, id)
		c.Next()
	}
}

// GetClientID returns the id set by ClientID, or ""
func GetClientID(c *gin.Context) core.ClientID {
	if v, ok := c.Get(ClientIDKey); ok {
		if id, ok := v.(core.ClientID); ok {
			return id
		}
	}
	return ""
}

// AccessLog writes one zap line per request
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(RequestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// Recovery turns a panic into a 500 JSON response, logging through zap
// instead of gin's default writer.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}
