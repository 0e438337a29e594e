package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civiclens-be/middlewares"
)

// GetMe returns the session of the signed-in staff member.
func GetMe(c *gin.Context) {
	session, ok := middlewares.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	c.JSON(http.StatusOK, session)
}
