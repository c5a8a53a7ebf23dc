package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hallowedlibrary/shelf/internal/session"
)

func hasBearer(c *gin.Context) bool {
	return bearerToken(c) != ""
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// BearerSession replaces the cookie session with one built from an
// "Authorization: Bearer" header. The token is passed to the catalog as is;
// the catalog rejects it if it is invalid.
func BearerSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			sess := &session.Session{Token: token}
			c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))
		}
		c.Next()
	}
}

// IsLocalPath reports whether path is a same-site path that is safe to
// redirect to.
func IsLocalPath(path string) bool {
	if !strings.HasPrefix(path, "/") {
		return false
	}
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") || strings.Contains(path, "\\") {
		return false
	}
	return true
}

// SanitizeRedirectPath returns path when it is local and "/" otherwise.
func SanitizeRedirectPath(path string) string {
	if IsLocalPath(path) {
		return path
	}
	return "/"
}
