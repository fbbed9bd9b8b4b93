package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"orgaccount-backend/services/token"
	"orgaccount-backend/shared/database/models"
)

// currentUserKey is the gin context key the resolved account is stored under.
const currentUserKey = "currentUser"

// Authentication resolves the bearer token on the request and stores the
// account in the context. Missing or invalid credentials are both rejected
// with 403 so callers cannot distinguish the two.
func Authentication(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Authentication credentials were not provided."})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Invalid token."})
			c.Abort()
			return
		}

		user, err := tokens.Resolve(c.Request.Context(), tokenParts[1])
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Invalid token."})
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireActive rejects accounts that have not completed email activation.
func RequireActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsActive() {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Your account is not activated."})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects non-admin accounts with the same message regardless
// of what they were trying to reach.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the account resolved by Authentication, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
