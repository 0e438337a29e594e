package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"civiclens-be/repository"
)

const requestTimeout = 10 * time.Second

const backendNotConfigured = "Backend not configured."

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// wantsHTML is true for plain browser form posts.
func wantsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}

// respondStoreError maps repository errors to status codes.
func respondStoreError(c *gin.Context, err error, failure string) {
	switch {
	case errors.Is(err, repository.ErrIssueNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
	case errors.Is(err, repository.ErrBackendNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": backendNotConfigured})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": failure})
	}
}
