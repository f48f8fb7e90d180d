package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourname/rehabtracker/internal/response"
)

const CookieName = "pulmonary_rehab_auth"

// SetSessionCookie stores token in the session cookie for SessionTTL.
func SetSessionCookie(c *gin.Context, token string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(SessionTTL.Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}

// SessionToken reads the marker from the session cookie, falling back to a
// bearer Authorization header.
func SessionToken(c *gin.Context) string {
	if v, err := c.Cookie(CookieName); err == nil && v != "" {
		return v
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session at clock(). The
// response never says why.
func AuthMiddleware(provider Provider, clock func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := provider.Validate(SessionToken(c), clock()); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Unauthorized"))
			return
		}
		c.Set("authenticated", true)
		c.Next()
	}
}
