package middleware

import (
	"net/http"

	"github.com/ordermill/storefront/internal/apiserver/database"
	"github.com/ordermill/storefront/internal/common/cnst"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminMiddleware creates a middleware that requires an admin role row for
// the authenticated user. It must run after JWTAuthMiddleware.
func AdminMiddleware(logger *zap.Logger, db database.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": cnst.ErrCodeUnauthorized})
			return
		}

		isAdmin, err := db.HasRole(c.Request.Context(), claims.UserID, database.RoleAdmin)
		if err != nil {
			logger.Error("admin role lookup failed",
				zap.Uint("user_id", claims.UserID),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": cnst.ErrCodeDBError})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": cnst.ErrCodeForbidden})
			return
		}

		c.Next()
	}
}
