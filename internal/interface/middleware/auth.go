package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tour-booking-api/internal/domain/auth"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
	"github.com/oksasatya/tour-booking-api/pkg/helpers"
)

// Authenticator resolves a session token into a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Principal, error)
}

// Protect requires a valid session token from the Authorization header or the
// jwt cookie. The verified principal replaces the request context, so later
// handlers read it with auth.PrincipalFrom.
func Protect(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			Fail(c, apperror.Unauthorized("You are not logged in! Please log in to get access."))
			return
		}
		p, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			Fail(c, err)
			return
		}
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// Identify attaches the principal when a valid token is present and lets the
// request through either way.
func Identify(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := tokenFrom(c); token != "" {
			if p, err := authn.Authenticate(c.Request.Context(), token); err == nil {
				c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
			}
		}
		c.Next()
	}
}

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(helpers.TokenCookie); err == nil && v != helpers.LoggedOutValue {
		return v
	}
	return ""
}
