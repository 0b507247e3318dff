package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/freelance/core"
	"github.com/layer-3/freelance/service"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// AuthMiddleware creates middleware that validates bearer access tokens
func AuthMiddleware(authService *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractBearerToken(c.Request)
		if err != nil {
			writeError(c, logger, core.NewError(core.KindUnauthorized, "Token mancante", err))
			return
		}

		claims, err := authService.Authenticate(token)
		if err != nil {
			writeError(c, logger, err)
			return
		}

		// Make the identity available to handlers
		c.Set(claimsKey, claims)

		c.Next()
	}
}

func claimsFrom(c *gin.Context) (*core.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*core.Claims)
	return claims, ok
}

// RequestLogger logs every request once it has been served
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}

		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
