package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// TokenCookie carries the session token for browser clients.
	TokenCookie = "jwt"
	// LoggedOutValue replaces the token on logout; the guard treats it as absent.
	LoggedOutValue = "loggedout"

	loggedOutTTL = 10 * time.Second
)

type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

// SetToken stores the signed token in an HttpOnly cookie expiring with it.
func (m *Manager) SetToken(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, token, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

// SetLoggedOut overwrites the token cookie with a short-lived placeholder.
func (m *Manager) SetLoggedOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(TokenCookie, LoggedOutValue, int(loggedOutTTL.Seconds()), "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
