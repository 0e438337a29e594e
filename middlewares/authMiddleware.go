package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civiclens-be/logger"
	"civiclens-be/models"
)

// SessionCookie is the name of the HTTP-only cookie holding the session token.
const SessionCookie = "session"

const sessionContextKey = "session"

// SessionVerifier resolves a cookie value to a session.
type SessionVerifier interface {
	Verify(token string) (*models.Session, error)
}

func readSession(c *gin.Context, verifier SessionVerifier) (*models.Session, bool) {
	token, err := c.Cookie(SessionCookie)
	if err != nil || token == "" {
		return nil, false
	}
	session, err := verifier.Verify(token)
	if err != nil {
		logger.Log.Debugf("Session cookie rejected: %v", err)
		return nil, false
	}
	return session, true
}

// CurrentSession returns the session stored by one of the session middlewares.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*models.Session)
	return session, ok
}

// RequireSession guards API routes.
func RequireSession(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := readSession(c, verifier)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// RequireSessionPage guards HTML pages, sending visitors without a session to /login.
func RequireSessionPage(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := readSession(c, verifier)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// RedirectIfAuthenticated sends logged-in staff from /login to /admin.
func RedirectIfAuthenticated(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := readSession(c, verifier); ok {
			c.Redirect(http.StatusFound, "/admin")
			c.Abort()
			return
		}
		c.Next()
	}
}
