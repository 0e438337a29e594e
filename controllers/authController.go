package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"civiclens-be/middlewares"
	"civiclens-be/models"
	"civiclens-be/services"
	"civiclens-be/utils"
)

const invalidLoginMessage = "Invalid username or password."

type CookieSettings struct {
	Domain string
	Secure bool
}

type AuthController struct {
	auth   *services.AuthService
	cookie CookieSettings
}

func NewAuthController(auth *services.AuthService, cookie CookieSettings) *AuthController {
	return &AuthController{auth: auth, cookie: cookie}
}

func (ctl *AuthController) setSessionCookie(c *gin.Context, token string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.SessionCookie,
		Value:    token,
		MaxAge:   maxAge,
		Path:     "/",
		Domain:   ctl.cookie.Domain,
		Secure:   ctl.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login accepts the admin credentials as JSON or as a form post. The login form
// names the field "email", so either name is accepted.
func (ctl *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		ctl.loginFailed(c, http.StatusBadRequest, invalidLoginMessage, utils.FieldErrors(err))
		return
	}
	username := req.Username
	if username == "" {
		username = req.Email
	}
	if username == "" {
		ctl.loginFailed(c, http.StatusBadRequest, invalidLoginMessage, map[string][]string{
			"username": {"Username is required."},
		})
		return
	}

	token, session, err := ctl.auth.Login(username, req.Password)
	if err != nil {
		ctl.loginFailed(c, http.StatusUnauthorized, invalidLoginMessage, nil)
		return
	}
	ctl.loggedIn(c, token, session)
}

type sessionRequest struct {
	IDToken string `json:"idToken" form:"idToken" binding:"required"`
}

// CreateSession exchanges an identity-provider ID token for a session cookie.
func (ctl *AuthController) CreateSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ID token is required.", "errors": utils.FieldErrors(err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	token, session, err := ctl.auth.LoginWithIDToken(ctx, req.IDToken)
	if err != nil {
		if errors.Is(err, services.ErrIdentityUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": backendNotConfigured})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": invalidLoginMessage})
		return
	}
	ctl.loggedIn(c, token, session)
}

func (ctl *AuthController) loggedIn(c *gin.Context, token string, session *models.Session) {
	ctl.setSessionCookie(c, token, ctl.auth.SessionTTLSeconds())
	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

func (ctl *AuthController) loginFailed(c *gin.Context, status int, message string, fields map[string][]string) {
	if wantsHTML(c) {
		c.HTML(status, "login.html", gin.H{"Message": message})
		return
	}
	c.JSON(status, gin.H{"success": false, "message": message, "errors": fields})
}

// Logout expires the session cookie.
func (ctl *AuthController) Logout(c *gin.Context) {
	ctl.setSessionCookie(c, "", -1)
	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
