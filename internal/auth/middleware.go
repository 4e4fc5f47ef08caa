package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"queuely/internal/response"
)

// ProviderIDKey is the gin context key holding the verified provider id
const ProviderIDKey = "providerID"

// Middleware rejects requests without a valid access token and stores the
// provider id for handlers.
func Middleware(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "NO_AUTH_HEADER",
				Message: "Authorization required",
			})
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_AUTH_HEADER",
				Message: "Expected a Bearer token",
			})
			return
		}

		providerID, err := issuer.ParseAccess(tokenString)
		if err != nil {
			code := "INVALID_TOKEN"
			if errors.Is(err, ErrWrongKind) {
				code = "INVALID_TOKEN_KIND"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    code,
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set(ProviderIDKey, providerID)
		c.Next()
	}
}

// ProviderID returns the verified provider id, or "" on unauthenticated routes
func ProviderID(c *gin.Context) string {
	return c.GetString(ProviderIDKey)
}
