package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BackendStatus describes which external services the server started with.
type BackendStatus struct {
	Data         string `json:"data"`
	DataReady    bool   `json:"dataReady"`
	Photos       string `json:"photos"`
	PhotosReady  bool   `json:"photosReady"`
	AI           bool   `json:"ai"`
	Events       string `json:"events"`
	RateLimiting bool   `json:"rateLimiting"`
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health reports 200 when the datastore is usable, 503 otherwise.
func Health(status BackendStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := http.StatusOK
		state := "ok"
		if !status.DataReady {
			code = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(code, gin.H{"status": state, "backends": status})
	}
}
