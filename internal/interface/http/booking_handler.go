package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tour-booking-api/internal/application"
	"github.com/oksasatya/tour-booking-api/pkg/response"
	"github.com/oksasatya/tour-booking-api/pkg/validation"
)

// StripeSignatureHeader carries the webhook signature.
const StripeSignatureHeader = "Stripe-Signature"

// MaxWebhookBytes caps webhook payloads. The route sits outside the /api body
// limit.
const MaxWebhookBytes = 64 << 10

type BookingHandler struct {
	Svc *application.BookingService
}

func NewBookingHandler(svc *application.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

func (h *BookingHandler) CheckoutSession(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tourID, err := parseID(c, "tourID")
	if err != nil {
		return err
	}
	session, err := h.Svc.CheckoutSession(c.Request.Context(), p, tourID)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "session", session)
	return nil
}

// Webhook reads the raw body: the signature covers the exact bytes sent.
func (h *BookingHandler) Webhook(c *gin.Context) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBytes)
	payload, err := c.GetRawData()
	if err != nil {
		return validation.FromError(err)
	}
	if _, err := h.Svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader(StripeSignatureHeader)); err != nil {
		return err
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
	return nil
}

func (h *BookingHandler) MyBookings(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	bookings, err := h.Svc.MyBookings(c.Request.Context(), p)
	if err != nil {
		return err
	}
	response.List(c, "bookings", bookings)
	return nil
}

func (h *BookingHandler) MyTours(c *gin.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tours, err := h.Svc.MyTours(c.Request.Context(), p)
	if err != nil {
		return err
	}
	response.List(c, "tours", tours)
	return nil
}

func (h *BookingHandler) List(c *gin.Context) error {
	bookings, err := h.Svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		return err
	}
	response.List(c, "bookings", bookings)
	return nil
}

func (h *BookingHandler) Get(c *gin.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "booking", b)
	return nil
}

func (h *BookingHandler) Create(c *gin.Context) error {
	var in application.BookingInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	b, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		return err
	}
	response.Created(c, "booking", b)
	return nil
}

func (h *BookingHandler) Update(c *gin.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in application.BookingInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	b, err := h.Svc.Update(c.Request.Context(), id, in)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, "booking", b)
	return nil
}

func (h *BookingHandler) Delete(c *gin.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		return err
	}
	response.NoContent(c)
	return nil
}
