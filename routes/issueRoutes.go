package routes

import (
	"github.com/gin-gonic/gin"

	"civiclens-be/controllers"
	"civiclens-be/middlewares"
)

// IssueRoutes sets up the public issue routes
func IssueRoutes(r *gin.Engine, deps Dependencies) {
	api := r.Group("/api")
	{
		api.POST("/issues",
			middlewares.SubmissionRateLimiter(deps.Redis, "civiclens:submissions", deps.SubmissionDailyLimit),
			deps.Issues.SubmitIssue)
		api.POST("/upload", deps.Uploads.UploadPhoto)
		api.GET("/geocode/reverse", deps.Geocode.ReverseGeocode)
		api.GET("/meta", controllers.GetMeta)
	}
}
