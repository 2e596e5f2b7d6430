package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	handlers "github.com/oksasatya/tour-booking-api/internal/interface/http"
	"github.com/oksasatya/tour-booking-api/internal/interface/middleware"
)

// TourModule serves /tours and the nested /tours/:id/reviews.
type TourModule struct {
	Tours   *handlers.TourHandler
	Reviews *handlers.ReviewHandler
	Guard   middleware.Authenticator
}

func NewTourModule(tours *handlers.TourHandler, reviews *handlers.ReviewHandler, guard middleware.Authenticator) *TourModule {
	return &TourModule{Tours: tours, Reviews: reviews, Guard: guard}
}

func (m *TourModule) Register(rg *gin.RouterGroup) {
	h := handlers.Handle
	protect := middleware.Protect(m.Guard)
	staff := middleware.RestrictTo(entity.RoleAdmin, entity.RoleLeadGuide)
	guides := middleware.RestrictTo(entity.RoleAdmin, entity.RoleLeadGuide, entity.RoleGuide)

	tours := rg.Group("/tours")
	tours.GET("/top-5-cheap", h(m.Tours.TopCheap))
	tours.GET("/tour-statistics", h(m.Tours.Statistics))
	tours.GET("/search", h(m.Tours.Search))
	tours.GET("/monthly-plan/:year", h(m.Tours.MonthlyPlan))
	tours.GET("/tours-within-certain-distance/:distance/center/:latlng/unit/:unit", protect, guides, h(m.Tours.Within))

	tours.GET("", h(m.Tours.List))
	tours.POST("", protect, staff, h(m.Tours.Create))
	tours.GET("/:id", h(m.Tours.Get))
	tours.PATCH("/:id", protect, staff, h(m.Tours.Update))
	tours.DELETE("/:id", protect, staff, h(m.Tours.Delete))

	tours.GET("/:id/reviews", protect, h(m.Reviews.ListForTour))
	tours.POST("/:id/reviews", protect, middleware.RestrictTo(entity.RoleUser), h(m.Reviews.CreateForTour))
}
