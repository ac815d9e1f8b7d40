package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"schooltrack/internal/apierr"
)

const ctxUserIDKey = "authUserID"

// UserID returns the authenticated user id bound by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

// RequireAuth enforces bearer JWT tokens signed with HS256 and binds the
// decoded user id to the request context. Each failure mode gets its own
// message.
func RequireAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": parseFailureMessage(err)})
			return
		}
		c.Set(ctxUserIDKey, claims.Subject)
		c.Next()
	}
}

func parseFailureMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed token"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "invalid token signature"
	default:
		return "invalid token"
	}
}

// RequireRoles re-resolves the user on every call so role changes take
// effect immediately, at the cost of one store lookup per request.
func RequireRoles(svc *Service, roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svc.Profile(c.Request.Context(), UserID(c))
		if err != nil {
			if apierr.IsKind(err, apierr.NotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found for authorization"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "authorization check failed"})
			return
		}
		for _, role := range roles {
			if u.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role " + string(u.Role) + " is not authorized for this route"})
	}
}
