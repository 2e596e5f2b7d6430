package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	handlers "github.com/oksasatya/tour-booking-api/internal/interface/http"
	"github.com/oksasatya/tour-booking-api/internal/interface/middleware"
)

type BookingModule struct {
	Handler *handlers.BookingHandler
	Guard   middleware.Authenticator
}

func NewBookingModule(h *handlers.BookingHandler, guard middleware.Authenticator) *BookingModule {
	return &BookingModule{Handler: h, Guard: guard}
}

func (m *BookingModule) Register(rg *gin.RouterGroup) {
	h := handlers.Handle
	bookings := rg.Group("/bookings", middleware.Protect(m.Guard))
	bookings.GET("/checkout-session/:tourID", h(m.Handler.CheckoutSession))
	bookings.GET("/my-bookings", h(m.Handler.MyBookings))
	bookings.GET("/my-tours", h(m.Handler.MyTours))

	staff := bookings.Group("", middleware.RestrictTo(entity.RoleAdmin, entity.RoleLeadGuide))
	staff.GET("", h(m.Handler.List))
	staff.POST("", h(m.Handler.Create))
	staff.GET("/:id", h(m.Handler.Get))
	staff.PATCH("/:id", h(m.Handler.Update))
	staff.DELETE("/:id", h(m.Handler.Delete))
}

// WebhookModule receives payment provider callbacks on /webhook-checkout,
// outside the /api body limit and rate limit.
type WebhookModule struct {
	Handler *handlers.BookingHandler
}

func NewWebhookModule(h *handlers.BookingHandler) *WebhookModule {
	return &WebhookModule{Handler: h}
}

func (m *WebhookModule) Register(rg *gin.RouterGroup) {
	rg.POST("/webhook-checkout", handlers.Handle(m.Handler.Webhook))
}
