package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	handlers "github.com/oksasatya/tour-booking-api/internal/interface/http"
	"github.com/oksasatya/tour-booking-api/internal/interface/middleware"
)

// UserModule serves authentication, the caller's own account and the admin
// user routes under /users.
type UserModule struct {
	Users *handlers.UserHandler
	Auth  *handlers.AuthHandler
	Guard middleware.Authenticator
	RDB   *redis.Client
}

func NewUserModule(users *handlers.UserHandler, authH *handlers.AuthHandler, guard middleware.Authenticator, rdb *redis.Client) *UserModule {
	return &UserModule{Users: users, Auth: authH, Guard: guard, RDB: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	h := handlers.Handle
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	users := rg.Group("/users")
	users.POST("/register", loginLimiter, h(m.Auth.Register))
	users.POST("/login", loginLimiter, h(m.Auth.Login))
	users.GET("/logout", middleware.Identify(m.Guard), h(m.Auth.Logout))
	users.POST("/forgotPassword", resetLimiter, h(m.Auth.ForgotPassword))
	users.PATCH("/resetPassword/:token", resetLimiter, h(m.Auth.ResetPassword))

	me := users.Group("", middleware.Protect(m.Guard))
	me.GET("/me", h(m.Users.Me))
	me.PATCH("/updateMe", h(m.Users.UpdateMe))
	me.PATCH("/updateMyPassword", middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByUser(), nil), h(m.Auth.UpdatePassword))
	me.DELETE("/deleteMe", h(m.Users.DeleteMe))

	admin := me.Group("", middleware.RestrictTo(entity.RoleAdmin))
	admin.GET("", h(m.Users.List))
	admin.GET("/:id", h(m.Users.Get))
	admin.PATCH("/:id", h(m.Users.Update))
	admin.DELETE("/:id", h(m.Users.Delete))
}
