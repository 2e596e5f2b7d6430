package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tour-booking-api/internal/application"
	"github.com/oksasatya/tour-booking-api/internal/domain/auth"
	"github.com/oksasatya/tour-booking-api/pkg/helpers"
	"github.com/oksasatya/tour-booking-api/pkg/response"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, cookies *helpers.Manager) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies}
}

// sendSession sets the token cookie and writes {status, token, data:{user}}.
func (h *AuthHandler) sendSession(c *gin.Context, status int, s *application.Session) {
	h.Cookies.SetToken(c, s.Token, s.ExpiresAt)
	response.Token(c, status, s.Token, s.User)
}

func (h *AuthHandler) Register(c *gin.Context) error {
	var in application.RegisterInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	s, err := h.Svc.Register(c.Request.Context(), in, clientMeta(c))
	if err != nil {
		return err
	}
	h.sendSession(c, http.StatusCreated, s)
	return nil
}

func (h *AuthHandler) Login(c *gin.Context) error {
	var in application.LoginInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	s, err := h.Svc.Login(c.Request.Context(), in, clientMeta(c))
	if err != nil {
		return err
	}
	h.sendSession(c, http.StatusOK, s)
	return nil
}

func (h *AuthHandler) Logout(c *gin.Context) error {
	var who *auth.Principal
	if p, ok := auth.PrincipalFrom(c.Request.Context()); ok {
		who = &p
	}
	h.Svc.Logout(c.Request.Context(), who, clientMeta(c))
	h.Cookies.SetLoggedOut(c)
	c.JSON(http.StatusOK, gin.H{"status": response.StatusSuccess})
	return nil
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) error {
	var in application.ForgotPasswordInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	if _, err := h.Svc.ForgotPassword(c.Request.Context(), in, clientMeta(c)); err != nil {
		return err
	}
	c.JSON(http.StatusOK, gin.H{"status": response.StatusSuccess, "message": "Token sent to email!"})
	return nil
}

func (h *AuthHandler) ResetPassword(c *gin.Context) error {
	var in application.ResetPasswordInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	s, err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), in, clientMeta(c))
	if err != nil {
		return err
	}
	h.sendSession(c, http.StatusOK, s)
	return nil
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var in application.UpdatePasswordInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	s, err := h.Svc.UpdatePassword(c.Request.Context(), p, in, clientMeta(c))
	if err != nil {
		return err
	}
	h.sendSession(c, http.StatusOK, s)
	return nil
}
