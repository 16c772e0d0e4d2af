package middlewares

import (
	"net/http"

	"civictrack-api/models"

	"github.com/gin-gonic/gin"
)

// RequireAuthority rejects callers whose role is not authority. Must run
// after AuthMiddleware.
func RequireAuthority() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if role != models.RoleAuthority {
			c.JSON(http.StatusForbidden, gin.H{"kind": models.KindForbidden, "error": "Authority role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
