// Package payment creates hosted checkout sessions and verifies the
// provider's webhook callbacks.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

const eventCheckoutCompleted = "checkout.session.completed"

// CheckoutRequest describes one tour purchase.
type CheckoutRequest struct {
	TourID        string
	TourName      string
	TourSummary   string
	ImageURL      string
	Price         float64
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the hosted payment page handed back to the client.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CompletedSession is a paid checkout reported by the webhook.
type CompletedSession struct {
	SessionID     string
	TourID        string
	CustomerEmail string
	Amount        float64
}

// Gateway is the payment provider as seen by the booking use-cases.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// ParseWebhook verifies the signature. It returns nil, nil for events
	// other than a completed checkout.
	ParseWebhook(payload []byte, signature string) (*CompletedSession, error)
}

type Stripe struct {
	api           *client.API
	webhookSecret string
}

var _ Gateway = (*Stripe)(nil)

func NewStripe(secretKey, webhookSecret string) *Stripe {
	return &Stripe{api: client.New(secretKey, nil), webhookSecret: webhookSecret}
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name:        stripe.String(req.TourName + " Tour"),
		Description: stripe.String(req.TourSummary),
	}
	if req.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{req.ImageURL})
	}
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		CustomerEmail:      stripe.String(req.CustomerEmail),
		ClientReferenceID:  stripe.String(req.TourID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount:  stripe.Int64(toCents(req.Price)),
				ProductData: product,
			},
		}},
	}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, apperror.Upstream("Could not create checkout session", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (*CompletedSession, error) {
	if s.webhookSecret == "" {
		return nil, apperror.Internal("webhook secret not configured", errors.New("missing STRIPE_WEBHOOK_SECRET"))
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, apperror.Validation("Webhook error: "+err.Error(), nil)
	}
	if string(event.Type) != eventCheckoutCompleted {
		return nil, nil
	}
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, apperror.Validation("Webhook error: malformed checkout session", nil)
	}
	return completedFrom(&sess), nil
}

// completedFrom prefers the first line item amount and falls back to the
// session total.
func completedFrom(sess *stripe.CheckoutSession) *CompletedSession {
	cents := sess.AmountTotal
	if sess.LineItems != nil && len(sess.LineItems.Data) > 0 && sess.LineItems.Data[0].AmountTotal > 0 {
		cents = sess.LineItems.Data[0].AmountTotal
	}
	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	return &CompletedSession{
		SessionID:     sess.ID,
		TourID:        sess.ClientReferenceID,
		CustomerEmail: email,
		Amount:        float64(cents) / 100,
	}
}

func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}
