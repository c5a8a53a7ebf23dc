package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hallowedlibrary/shelf/internal/auth"
	"github.com/hallowedlibrary/shelf/internal/logging"
	"github.com/hallowedlibrary/shelf/internal/session"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// --- Error Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondUnauthorized is used by the JSON routes in place of the login
// redirect.
func respondUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Error: message})
}

// respondUpstreamError reports a failed catalog call. message is the
// generic text of the view; the cause is only logged.
func respondUpstreamError(c *gin.Context, message string) {
	c.JSON(http.StatusBadGateway, ErrorResponse{Error: message})
}

func respondInternalError(c *gin.Context, err error, context string) {
	logging.Log.WithError(err).WithField("context", context).Error("Internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// --- Request Helpers ---

// currentSession returns the session placed in the request context by the
// session or bearer middleware, or nil.
func currentSession(c *gin.Context) *session.Session {
	return session.FromContext(c.Request.Context())
}

// queryInt reads a non-negative integer query parameter. Missing or invalid
// values yield 0.
func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// redirectToLogin sends the browser to the login page and back to the
// current page afterwards.
func redirectToLogin(c *gin.Context, notice string) {
	redirectToLoginFrom(c, c.Request.URL.RequestURI(), notice)
}

// redirectToLoginFrom is redirectToLogin with an explicit return path.
func redirectToLoginFrom(c *gin.Context, next, notice string) {
	target := "/login?next=" + url.QueryEscape(auth.SanitizeRedirectPath(next))
	if notice != "" {
		target += "&notice=" + url.QueryEscape(notice)
	}
	c.Redirect(http.StatusSeeOther, target)
}

// redirectBack follows the "next" form field when it is a local path.
func redirectBack(c *gin.Context, fallback string) {
	next := c.PostForm("next")
	if next == "" || !auth.IsLocalPath(next) {
		next = fallback
	}
	c.Redirect(http.StatusSeeOther, next)
}

// --- Template Helpers ---

// page merges the values every template needs into data.
func page(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	sess := currentSession(c)
	data["Session"] = sess
	data["LoggedIn"] = sess.Authenticated()
	data["CSRFToken"] = auth.GetCSRFToken(c)
	if msg := strings.TrimSpace(c.Query("error")); msg != "" {
		data["Flash"] = msg
	}
	if msg := strings.TrimSpace(c.Query("notice")); msg != "" {
		data["Notice"] = msg
	}
	return data
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
