package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"social-service/internal/identity"
	"social-service/internal/models"
	"social-service/internal/repositories"
)

const (
	// ContextUserID is the gin context key holding the authenticated UID.
	ContextUserID = "uid"
	// ContextPrincipal holds the full identity.Principal for the request.
	ContextPrincipal = "principal"
)

// Authenticate verifies the Bearer ID token on every request and stashes the
// principal in the gin context. Websocket clients cannot set headers from the
// browser, so a ?token= query parameter is accepted as a fallback.
//
// The local users mirror is refreshed best-effort on each authenticated
// request; a failed upsert is logged and never blocks the caller.
func Authenticate(verifier *identity.Verifier, users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			c.Abort()
			return
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization token"})
			c.Abort()
			return
		}

		if err := users.UpsertUser(c.Request.Context(), models.User{
			ID:          principal.UID,
			Username:    principal.Username,
			DisplayName: principal.DisplayName,
		}); err != nil {
			log.Printf("auth: user mirror upsert failed uid=%s: %v", principal.UID, err)
		}

		c.Set(ContextUserID, principal.UID)
		c.Set(ContextPrincipal, principal)
		c.Next()
	}
}

// RequireVerified gates mutating routes. Anonymous principals and principals
// without a verified email get 403 even though their token parsed fine.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok || !principal.Verified() {
			c.JSON(http.StatusForbidden, gin.H{"error": "a verified account is required for this action"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserIDFromContext returns the authenticated UID set by Authenticate.
func UserIDFromContext(c *gin.Context) string {
	uid, _ := c.Get(ContextUserID)
	s, _ := uid.(string)
	return s
}

// PrincipalFromContext returns the full principal set by Authenticate.
func PrincipalFromContext(c *gin.Context) (identity.Principal, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return identity.Principal{}, false
	}
	p, ok := v.(identity.Principal)
	return p, ok
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.Query("token")
}
