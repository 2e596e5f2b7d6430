// Package event carries domain events between application services. Delivery
// is in-process and synchronous: Publish returns after every subscriber ran.
package event

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NameReviewChanged  = "review.changed"
	NameBookingCreated = "booking.created"
)

type Event interface {
	Name() string
}

// ReviewChanged is published after a review of TourID was created, updated or
// deleted.
type ReviewChanged struct {
	TourID primitive.ObjectID
}

func (ReviewChanged) Name() string { return NameReviewChanged }

// BookingCreated is published after a booking was stored.
type BookingCreated struct {
	BookingID primitive.ObjectID
	TourID    primitive.ObjectID
	UserID    primitive.ObjectID
	Price     float64
	SessionID string
}

func (BookingCreated) Name() string { return NameBookingCreated }

type Handler func(ctx context.Context, e Event) error

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *logrus.Logger
}

func NewBus(logger *logrus.Logger) *Bus {
	return &Bus{handlers: map[string][]Handler{}, logger: logger}
}

func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

// Publish runs the subscribers of e in registration order. A failing
// subscriber is logged and does not stop the others; the write that produced
// the event has already happened.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers[e.Name()]...)
	b.mu.RUnlock()
	for _, h := range hs {
		if err := h(ctx, e); err != nil && b.logger != nil {
			b.logger.WithError(err).WithField("event", e.Name()).Error("event subscriber failed")
		}
	}
}

var _ Publisher = (*Bus)(nil)
