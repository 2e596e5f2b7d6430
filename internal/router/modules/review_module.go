package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	handlers "github.com/oksasatya/tour-booking-api/internal/interface/http"
	"github.com/oksasatya/tour-booking-api/internal/interface/middleware"
)

type ReviewModule struct {
	Handler *handlers.ReviewHandler
	Guard   middleware.Authenticator
}

func NewReviewModule(h *handlers.ReviewHandler, guard middleware.Authenticator) *ReviewModule {
	return &ReviewModule{Handler: h, Guard: guard}
}

func (m *ReviewModule) Register(rg *gin.RouterGroup) {
	h := handlers.Handle
	reviews := rg.Group("/reviews", middleware.Protect(m.Guard))
	authors := middleware.RestrictTo(entity.RoleUser, entity.RoleAdmin)

	reviews.GET("", h(m.Handler.List))
	reviews.POST("", middleware.RestrictTo(entity.RoleUser), h(m.Handler.Create))
	reviews.GET("/:id", h(m.Handler.Get))
	reviews.PATCH("/:id", authors, h(m.Handler.Update))
	reviews.DELETE("/:id", authors, h(m.Handler.Delete))
}
