package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/detske-trhy/backend/internal/auth"
	"github.com/detske-trhy/backend/pkg/response"
)

// Admin returns a middleware that guards privileged endpoints. The credential
// is presented as `Authorization: Bearer <credential>` and verified
// independently on every request; both the shared admin password and a
// session token from /admin/login are accepted.
func Admin(service *auth.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		if !service.VerifyCredential(parts[1]) {
			response.Unauthorized(c, "invalid admin credential")
			c.Abort()
			return
		}
		c.Next()
	}
}
