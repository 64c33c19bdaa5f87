package middleware

import (
	"net/http"
	"strings"

	"church_community_backend/internal/models"
	"church_community_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// actorContextKey is the gin context key the authenticated Actor is stored under.
const actorContextKey = "actor"

// AuthMiddleware creates a Gin middleware for JWT authentication. On success it
// stores a models.Actor in the context; handlers pass that actor explicitly
// into every service call.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format. Use Bearer <token>"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			c.Abort()
			return
		}

		role := models.Role(claims.Role)
		if !role.IsValid() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown role in token claims"})
			c.Abort()
			return
		}

		c.Set(actorContextKey, models.Actor{
			UserID:   claims.UserID,
			FullName: claims.FullName,
			Role:     role,
		})
		c.Next()
	}
}

// GetActor returns the authenticated caller stored by AuthMiddleware.
func GetActor(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}

// RoleAuthMiddleware creates a Gin middleware for role-based authorization.
// It checks if the actor's role is one of the allowed roles.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Caller identity not found. Ensure AuthMiddleware runs first."})
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if actor.Role == r {
				c.Next()
				return
			}
		}

		names := make([]string, len(allowedRoles))
		for i, r := range allowedRoles {
			names[i] = string(r)
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource. Required roles: " + strings.Join(names, ", ")})
		c.Abort()
	}
}

// LeadershipRoles lists the roles allowed to build and manage staffing
// assignments.
var LeadershipRoles = []models.Role{
	models.RoleTeamLeaderA,
	models.RoleTeamLeaderB,
	models.RoleGeneralLeader,
	models.RoleAdminMaster,
}

// AdminRoles lists the application administrator roles.
var AdminRoles = []models.Role{models.RoleAdmin, models.RoleAdminMaster}
