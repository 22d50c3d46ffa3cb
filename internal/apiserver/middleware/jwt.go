package middleware

import (
	"net/http"
	"strings"

	"github.com/ordermill/storefront/internal/auth/jwt"
	"github.com/ordermill/storefront/internal/common/cnst"

	"github.com/gin-gonic/gin"
)

// ClaimsKey is the gin context key holding the validated JWT claims
const ClaimsKey = "claims"

// JWTAuthMiddleware creates a middleware that validates JWT tokens
func JWTAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": cnst.ErrCodeUnauthorized})
			return
		}

		// Check if the header has the Bearer prefix
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": cnst.ErrCodeUnauthorized})
			return
		}

		// Validate the token
		claims, err := jwtService.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": cnst.ErrCodeUnauthorized})
			return
		}

		// Add the claims to the context
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetClaims returns the JWT claims stored by JWTAuthMiddleware, or nil when
// the request did not pass through it.
func GetClaims(c *gin.Context) *jwt.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		return nil
	}
	return claims
}
