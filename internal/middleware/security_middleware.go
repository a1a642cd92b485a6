package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"go-pos-report/internal/auth"
	"go-pos-report/internal/report"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "userID"
	roleKey   = "role"
)

// TokenValidator checks bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Authenticate reads the bearer token when one is present and stores the
// caller's claims in the context. Requests without a valid token pass through
// anonymous so the report pipeline can answer them itself.
func Authenticate(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}
		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// RequireAuth rejects requests that Authenticate left anonymous.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(userIDKey); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header with a valid Bearer token is required",
				"code":  string(report.KindUnauthenticated),
			})
			return
		}
		c.Next()
	}
}

// RequireRole is a secondary guard that checks for specific permissions
func RequireRole(allowedRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(roleKey) != allowedRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "You do not have permission to access this resource",
				"code":  "permission-denied",
			})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns who is calling, as established by Authenticate.
func IdentityFrom(c *gin.Context) report.Identity {
	raw, ok := c.Get(userIDKey)
	if !ok {
		return report.Identity{}
	}
	userID, _ := raw.(uint)
	return report.Identity{
		Authenticated: true,
		Subject:       strconv.FormatUint(uint64(userID), 10),
		Role:          c.GetString(roleKey),
	}
}

func bearer(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}
