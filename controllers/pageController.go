package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civiclens-be/middlewares"
	"civiclens-be/models"
)

// IndexPage renders the public report form.
func IndexPage(c *gin.Context) {
	data := gin.H{
		"Categories": categoryOptions(),
		"Errors":     map[string][]string{},
	}
	if c.Query("submitted") == "1" {
		data["Success"] = "Issue reported successfully! Our team will review it shortly."
	}
	c.HTML(http.StatusOK, "index.html", data)
}

func LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// AdminPage renders the dashboard shell; data is loaded from the admin API.
func AdminPage(c *gin.Context) {
	session, _ := middlewares.CurrentSession(c)
	c.HTML(http.StatusOK, "admin.html", gin.H{
		"Session":    session,
		"Categories": categoryOptions(),
		"Statuses":   models.Statuses,
		"Priorities": models.Priorities,
	})
}
