package routes

import (
	"github.com/gin-gonic/gin"

	"civiclens-be/controllers"
	"civiclens-be/middlewares"
)

// PageRoutes serves the HTML pages
func PageRoutes(r *gin.Engine, deps Dependencies) {
	r.GET("/", controllers.IndexPage)
	r.GET("/login", middlewares.RedirectIfAuthenticated(deps.Session), controllers.LoginPage)
	r.GET("/admin", middlewares.RequireSessionPage(deps.Session), controllers.AdminPage)
}
