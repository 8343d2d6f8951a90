// Package session gives every browser a stable anonymous session id, carried
// in a cookie, that keys its cart and favorites.
package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CookieName = "sessionid"
	contextKey = "sessionID"
)

// Middleware reads the session cookie, issuing a new id when it is missing
// or malformed, and refreshes the cookie expiry on every request.
func Middleware(ttl time.Duration, secure bool) gin.HandlerFunc {
	maxAge := int(ttl / time.Second)
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, id, maxAge, "/", "", secure, true)
		c.Set(contextKey, id)
		c.Next()
	}
}

// ID returns the session id set by Middleware, or "" outside of it.
func ID(c *gin.Context) string {
	return c.GetString(contextKey)
}
