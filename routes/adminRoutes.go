package routes

import (
	"github.com/gin-gonic/gin"

	"civiclens-be/middlewares"
)

// AdminRoutes sets up the staff API, all behind the session cookie
func AdminRoutes(r *gin.Engine, deps Dependencies) {
	admin := r.Group("/api/admin", middlewares.RequireSession(deps.Session))
	{
		admin.GET("/issues", deps.Issues.ListIssues)
		admin.GET("/issues/:id", deps.Issues.GetIssue)
		admin.POST("/issues/status", deps.Issues.UpdateIssueStatus)
		admin.GET("/summary", deps.Issues.GetSummary)
		admin.GET("/ws", deps.Live.Stream)
	}
}
