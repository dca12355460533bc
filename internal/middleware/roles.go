package middleware

import (
	"krishna_store/internal/domain"
	"krishna_store/internal/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRoles lets the request through only when the caller's role is listed.
// It must run after JWTAuthMiddleware.
func RequireRoles(message string, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		_, role, ok := Actor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.Envelope{Message: "Unauthorized"})
			return
		}
		if _, ok := allowed[role]; !ok {
			utils.Abort(c, domain.AuthorizationError(message))
			return
		}
		c.Next()
	}
}

// AdminOnly gates staff management
func AdminOnly() gin.HandlerFunc {
	return RequireRoles("Access denied. Admin privileges required.", domain.RoleAdmin)
}

// AdminOrSubadmin gates order, shop settings and birthday endpoints
func AdminOrSubadmin() gin.HandlerFunc {
	return RequireRoles("Access denied. Admin or Subadmin privileges required.", domain.RoleAdmin, domain.RoleSubadmin)
}
