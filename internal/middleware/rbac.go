package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/discipulus-api/internal/models"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
	"github.com/noah-isme/discipulus-api/pkg/response"
)

// RBAC enforces role-based access control for routes.
func RBAC(allowed ...models.UserRole) gin.HandlerFunc {
	allowedRoles := roleSet(allowed)
	return func(c *gin.Context) {
		if _, ok := authorize(c, allowedRoles); !ok {
			return
		}
		c.Next()
	}
}

// RequireTeacher admits only teacher accounts linked to a catalog record.
func RequireTeacher() gin.HandlerFunc {
	allowedRoles := roleSet([]models.UserRole{models.RoleTeacher})
	return func(c *gin.Context) {
		claims, ok := authorize(c, allowedRoles)
		if !ok {
			return
		}
		if !claims.IsTeacher() {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a teacher profile"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func roleSet(roles []models.UserRole) map[models.UserRole]struct{} {
	set := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

func authorize(c *gin.Context, allowed map[models.UserRole]struct{}) (*models.JWTClaims, bool) {
	claimsValue, exists := c.Get(ContextUserKey)
	if !exists {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return nil, false
	}
	claims, ok := claimsValue.(*models.JWTClaims)
	if !ok || claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return nil, false
	}
	if _, ok := allowed[claims.Role]; !ok {
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
		return nil, false
	}
	return claims, true
}
