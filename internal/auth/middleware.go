package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const identityContextKey contextKey = "filegateIdentity"

// Middleware verifies the bearer token on every request and injects the
// verified identity. Requests without a valid token never reach the handler.
func Middleware(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := extractBearerToken(authHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrUnauthorized) && !errors.Is(err, ErrMissingToken) {
				_ = c.Error(err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(string(identityContextKey), identity)
		c.Next()
	}
}

// CurrentIdentity extracts the verified identity from the context.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	value, exists := c.Get(string(identityContextKey))
	if !exists {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

// RequireUser returns the verified uid or false when the request is unauthenticated.
func RequireUser(c *gin.Context) (string, bool) {
	identity, ok := CurrentIdentity(c)
	if !ok || identity.UID == "" {
		return "", false
	}
	return identity.UID, true
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
