package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"civiclens-be/controllers"
	"civiclens-be/middlewares"
	"civiclens-be/views"
)

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	Issues  *controllers.IssueController
	Uploads *controllers.UploadController
	Auth    *controllers.AuthController
	Geocode *controllers.GeocodeController
	Live    *controllers.LiveController
	Session middlewares.SessionVerifier
	Status  controllers.BackendStatus

	AllowedOrigins []string
	MediaRoot      string

	Redis                *redis.Client
	SubmissionDailyLimit int
	LoginRateLimit       int64
	LoginRatePeriod      time.Duration

	MaxUploadBytes int64
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	// Room for the photo plus the text fields.
	r.MaxMultipartMemory = deps.MaxUploadBytes + 1<<20
	r.SetHTMLTemplate(views.Templates())

	if deps.MediaRoot != "" {
		r.Static("/media", deps.MediaRoot)
	}

	r.GET("/ping", controllers.Ping)
	r.GET("/health", controllers.Health(deps.Status))

	PageRoutes(r, deps)
	IssueRoutes(r, deps)
	AuthRoutes(r, deps)
	AdminRoutes(r, deps)

	return r
}
