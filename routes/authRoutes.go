package routes

import (
	"github.com/gin-gonic/gin"

	"civiclens-be/controllers"
	"civiclens-be/middlewares"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, deps Dependencies) {
	limiter := middlewares.LoginRateLimiter(deps.LoginRateLimit, deps.LoginRatePeriod)

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", limiter, deps.Auth.Login)
		auth.POST("/session", limiter, deps.Auth.CreateSession)
		auth.POST("/logout", deps.Auth.Logout)
		auth.GET("/me", middlewares.RequireSession(deps.Session), controllers.GetMe)
	}
}
