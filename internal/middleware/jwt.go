package middleware

import (
	"errors"                        // Not-found detection
	"krishna_store/internal/db"     // Store error classification
	"krishna_store/internal/domain" // Importing domain models
	"krishna_store/internal/utils"  // JWT utility functions
	"net/http"                      // HTTP status codes
	"strings"                       // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Context keys set by JWTAuthMiddleware
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)

// JWTAuthMiddleware validates the bearer token and resolves the caller to {id, role}.
// The role is re-read from the store so deactivation and role changes apply immediately.
func JWTAuthMiddleware(secret string, gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.Envelope{Message: "Missing or invalid Authorization header"})
			return
		}
		claims, err := utils.ParseJWT(strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.Envelope{Message: "Invalid or expired token"})
			return
		}
		var user domain.User
		err = gdb.WithContext(c.Request.Context()).First(&user, claims.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.IsActive) {
			// Unknown or deactivated account
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.Envelope{Message: "Account not found or inactive"})
			return
		}
		if err != nil {
			utils.Abort(c, db.Classify(err, "Server error while authenticating")) // Contention becomes 503
			return
		}
		c.Set(UserIDKey, user.ID) // Store userID in context
		c.Set(RoleKey, user.Role) // Store role in context
		c.Next()
	}
}

// Actor returns the authenticated caller set by JWTAuthMiddleware
func Actor(c *gin.Context) (uint, string, bool) {
	id, ok := c.Get(UserIDKey)
	if !ok {
		return 0, "", false
	}
	userID, ok := id.(uint)
	return userID, c.GetString(RoleKey), ok
}
