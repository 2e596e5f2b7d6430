package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tour-booking-api/internal/domain/auth"
	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

// RestrictTo lets through principals holding one of roles. It must run after
// Protect.
func RestrictTo(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := auth.PrincipalFrom(c.Request.Context())
		if !ok {
			Fail(c, apperror.Unauthorized("You are not logged in! Please log in to get access."))
			return
		}
		if !p.HasRole(roles...) {
			Fail(c, apperror.Forbidden("You do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}
