package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter sets up the Gin router
func SetupRouter(handlers *AuthHandlers, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))
	router.MaxMultipartMemory = handlers.maxUploadBytes

	router.GET("/health", handlers.Health)

	// Auth routes
	auth := router.Group("/api/auth")
	{
		auth.GET("/nonce", handlers.Nonce)
		auth.POST("/login", handlers.Login)
		auth.POST("/signup", handlers.Signup)
		auth.GET("/refresh", handlers.Refresh)
		auth.POST("/logout", handlers.Logout)
		auth.GET("/image/:id", handlers.Image)

		// Paths used by existing web clients
		auth.POST("", handlers.Login)
		auth.POST("/freelancer-signup", handlers.Signup)
		auth.GET("/image/view/:id", handlers.Image)
	}

	// Protected user routes
	users := router.Group("/api/users")
	users.Use(AuthMiddleware(handlers.authService, logger))
	{
		users.GET("/me", handlers.Me)
		users.GET("/profile/:address", handlers.Profile)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   fmt.Sprintf("Route %s %s non trovata", c.Request.Method, c.Request.URL.Path),
			Success: false,
		})
	})

	return router
}
