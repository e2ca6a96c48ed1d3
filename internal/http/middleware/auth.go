package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voyage/internal/domain"
)

const requestContextKey = "request_context"

// TokenParser turns an Authorization header value into the caller's identity.
type TokenParser interface {
	Parse(raw string) (domain.RequestContext, error)
}

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"code":       code,
		"request_id": GetRequestID(c),
		"message":    message,
	})
}

// Auth requires a valid bearer token and stores the caller on the context.
func Auth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if raw == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		rc, err := tokens.Parse(raw)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		c.Set(requestContextKey, rc)
		c.Next()
	}
}

// RequireRoles must run after Auth.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := Caller(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		for _, r := range roles {
			if rc.Role == r {
				c.Next()
				return
			}
		}
		abortJSON(c, http.StatusForbidden, "forbidden", "insufficient role")
	}
}

// Caller returns the identity set by Auth.
func Caller(c *gin.Context) (domain.RequestContext, bool) {
	v, ok := c.Get(requestContextKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	rc, ok := v.(domain.RequestContext)
	return rc, ok
}
