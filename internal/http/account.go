package http

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hallowedlibrary/shelf/internal/auth"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	"github.com/hallowedlibrary/shelf/internal/logging"
	"github.com/hallowedlibrary/shelf/internal/session"
	"github.com/hallowedlibrary/shelf/internal/views"
)

// AccountController handles login, sign-up, logout and the profile page.
type AccountController struct {
	catalog   Catalog
	store     session.Store
	favorites *favorites.Registry
	limiter   *auth.RateLimiter
}

func NewAccountController(cat Catalog, store session.Store, registry *favorites.Registry, limiter *auth.RateLimiter) *AccountController {
	return &AccountController{
		catalog:   cat,
		store:     store,
		favorites: registry,
		limiter:   limiter,
	}
}

// LoginPage handles GET /login.
func (ac *AccountController) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", page(c, gin.H{
		"Title": "Login",
		"Next":  auth.SanitizeRedirectPath(c.Query("next")),
	}))
}

// Login handles POST /login. JSON clients get the user and token back; the
// HTML form is redirected to "next".
func (ac *AccountController) Login(c *gin.Context) {
	var form views.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	next := auth.SanitizeRedirectPath(c.PostForm("next"))

	if ac.limiter != nil {
		if wait := ac.limiter.Wait(c.ClientIP(), form.Identifier); wait > 0 {
			ac.rejectThrottled(c, wait, next, form.Identifier)
			return
		}
	}

	result := views.Login(c.Request.Context(), ac.catalog, ac.store, form)
	if result.Session == nil {
		if ac.limiter != nil {
			if lockout := ac.limiter.Fail(c.ClientIP(), form.Identifier); lockout > 0 {
				logging.Log.WithField("identifier", form.Identifier).Warn("Login locked out after repeated failures")
			}
		}
		if wantsJSON(c) {
			respondUnauthorized(c, result.Message)
			return
		}
		c.HTML(http.StatusUnauthorized, "login.html", page(c, gin.H{
			"Title":      "Login",
			"Next":       next,
			"Message":    result.Message,
			"Identifier": form.Identifier,
		}))
		return
	}

	if ac.limiter != nil {
		ac.limiter.Reset(c.ClientIP(), form.Identifier)
	}
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{
			"access_token": result.Session.Token,
			"user":         result.User,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, next)
}

func (ac *AccountController) rejectThrottled(c *gin.Context, wait time.Duration, next, identifier string) {
	c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
	if wantsJSON(c) {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: views.MsgTooManyLogins})
		return
	}
	c.HTML(http.StatusTooManyRequests, "login.html", page(c, gin.H{
		"Title":      "Login",
		"Next":       next,
		"Message":    views.MsgTooManyLogins,
		"Identifier": identifier,
	}))
}

// SignupPage handles GET /signup.
func (ac *AccountController) SignupPage(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", page(c, gin.H{
		"Title": "Sign up",
		"Form":  views.SignupForm{},
	}))
}

// Signup handles POST /signup.
func (ac *AccountController) Signup(c *gin.Context) {
	var form views.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result := views.Signup(c.Request.Context(), ac.catalog, form)
	status := http.StatusCreated
	if !result.Created {
		status = http.StatusBadRequest
	}

	if wantsJSON(c) {
		c.JSON(status, result)
		return
	}
	if result.Created {
		status = http.StatusOK
	}
	c.HTML(status, "signup.html", page(c, gin.H{
		"Title":   "Sign up",
		"Form":    result.Form,
		"Message": result.Message,
		"Created": result.Created,
	}))
}

// Logout handles POST /logout.
func (ac *AccountController) Logout(c *gin.Context) {
	sess := currentSession(c)
	ac.favorites.Forget(sess)
	if err := views.Logout(c.Request.Context(), ac.store); err != nil {
		logging.Log.WithError(err).Warn("Failed to clear session")
	}
	if wantsJSON(c) {
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ProfilePage handles GET /profile.
func (ac *AccountController) ProfilePage(c *gin.Context) {
	profile := views.Profile(c.Request.Context(), ac.catalog, currentSession(c))
	if profile.LoginRequired {
		redirectToLogin(c, "")
		return
	}

	status := http.StatusOK
	if profile.Error != "" {
		status = http.StatusBadGateway
	}
	c.HTML(status, "profile.html", page(c, gin.H{
		"Title":   "Profile",
		"Profile": profile,
	}))
}

// Profile handles GET /api/profile.
func (ac *AccountController) Profile(c *gin.Context) {
	profile := views.Profile(c.Request.Context(), ac.catalog, currentSession(c))
	switch {
	case profile.LoginRequired:
		respondUnauthorized(c, "login required")
	case profile.Error != "":
		respondUpstreamError(c, profile.Error)
	default:
		c.JSON(http.StatusOK, profile)
	}
}
