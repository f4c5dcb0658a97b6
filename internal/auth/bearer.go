package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// BearerTokenAuth checks requests against a single static token
type BearerTokenAuth struct {
	token string
}

// NewBearerTokenAuth creates a new Bearer token authenticator
func NewBearerTokenAuth(token string) *BearerTokenAuth {
	return &BearerTokenAuth{token: token}
}

// IsAuthorized validates the Bearer token from the Authorization header.
// An authenticator configured with an empty token rejects everything.
func (b *BearerTokenAuth) IsAuthorized(r *http.Request) bool {
	if b.token == "" {
		return false
	}

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return false
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(b.token)) == 1
}

// SetUnauthorizedHeaders sets standard WWW-Authenticate header for Bearer auth
func (b *BearerTokenAuth) SetUnauthorizedHeaders(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
}

// Middleware aborts unauthorized requests with 401 and a JSON error body
func (b *BearerTokenAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !b.IsAuthorized(c.Request) {
			b.SetUnauthorizedHeaders(c.Writer)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
