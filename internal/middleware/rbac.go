package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grade-analytics-api/internal/models"
	appErrors "github.com/noah-isme/grade-analytics-api/pkg/errors"
	"github.com/noah-isme/grade-analytics-api/pkg/response"
)

// RequireRoles lets the request through when the caller holds at least one of roles.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		for _, role := range roles {
			if claims.Roles.Has(role) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
