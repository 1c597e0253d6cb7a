package httpmiddleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chessman8212-ai/poinatge-app/internal/policy"
	"github.com/chessman8212-ai/poinatge-app/internal/session"
)

const principalKey = "principal"

// ResolveSession looks up the session token from the cookie or the
// Authorization header and attaches the resolved principal to the context.
// Anonymous requests pass through with no principal; route guards decide
// what that means.
func ResolveSession(sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}
		p, err := sessions.Current(c.Request.Context(), token)
		if err != nil {
			log.Printf("session lookup failed: %v", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session backend unavailable"})
			return
		}
		if p != nil {
			c.Set(principalKey, p)
		}
		c.Next()
	}
}

// RequireAuthenticated rejects anonymous requests.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.RequireAuthenticated(CurrentPrincipal(c)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anonymous and non-admin requests.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if err := policy.RequireAdmin(p); err != nil {
			status := http.StatusForbidden
			if p == nil {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the principal attached by ResolveSession, nil
// when the request is anonymous.
func CurrentPrincipal(c *gin.Context) *policy.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*policy.Principal); ok {
			return p
		}
	}
	return nil
}

// SessionToken extracts the opaque token from the request, cookie first,
// then bearer header.
func SessionToken(c *gin.Context) string {
	return sessionToken(c)
}

func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie != "" {
		return cookie
	}
	authz := c.GetHeader("Authorization")
	if authz != "" && strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}
