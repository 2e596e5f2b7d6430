package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/application"
	"github.com/oksasatya/tour-booking-api/pkg/response"
)

type ReviewHandler struct {
	Svc *application.ReviewService
}

func NewReviewHandler(svc *application.ReviewService) *ReviewHandler {
	return &ReviewHandler{Svc: svc}
}

func (h *ReviewHandler) List(c *gin.Context) error {
	return h.list(c, nil)
}

// ListForTour serves /tours/:id/reviews.
func (h *ReviewHandler) ListForTour(c *gin.Context) error {
	tourID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return h.list(c, &tourID)
}

func (h *ReviewHandler) list(c *gin.Context, tourID *primitive.ObjectID) error {
	reviews, err := h.Svc.List(c.Request.Context(), tourID, c.Request.URL.Query())
	if err != nil {
		return err
	}
	response.List(c, "reviews", reviews)
	return nil
}

func (h *ReviewHandler) Get(c *gin.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	rv, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "review", rv)
	return nil
}

func (h *ReviewHandler) Create(c *gin.Context) error {
	return h.create(c, nil)
}

// CreateForTour serves POST /tours/:id/reviews; the path tour wins.
func (h *ReviewHandler) CreateForTour(c *gin.Context) error {
	tourID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return h.create(c, &tourID)
}

func (h *ReviewHandler) create(c *gin.Context, tourID *primitive.ObjectID) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var in application.ReviewInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	rv, err := h.Svc.Create(c.Request.Context(), p, tourID, in)
	if err != nil {
		return err
	}
	response.Created(c, "review", rv)
	return nil
}

func (h *ReviewHandler) Update(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in application.ReviewInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	rv, err := h.Svc.Update(c.Request.Context(), p, id, in)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "review", rv)
	return nil
}

func (h *ReviewHandler) Delete(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request.Context(), p, id); err != nil {
		return err
	}
	response.NoContent(c)
	return nil
}
