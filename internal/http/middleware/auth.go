package middleware

import (
	"net/http"
	"strings"

	"locacar/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "access_token"
	customerIDKey = "customer_id"
)

// SessionParser verifies a session token.
type SessionParser interface {
	Parse(token string) (services.SessionClaims, error)
}

// RequireSession accepts the access_token cookie or an
// "Authorization: Bearer" header and stores the customer id on the context.
func RequireSession(parser SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			abortUnauthorized(c, "missing session")
			return
		}
		claims, err := parser.Parse(token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired session")
			return
		}
		c.Set(customerIDKey, claims.CustomerID)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"message":    msg,
		"request_id": GetRequestID(c),
	})
}

// CustomerID returns the authenticated customer id, or 0.
func CustomerID(c *gin.Context) int64 {
	if c == nil {
		return 0
	}
	return c.GetInt64(customerIDKey)
}
