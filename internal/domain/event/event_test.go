package event

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBusDeliversInOrderAndSurvivesFailures(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	bus := NewBus(logger)

	var calls []string
	bus.Subscribe(NameReviewChanged, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	bus.Subscribe(NameReviewChanged, func(ctx context.Context, e Event) error {
		rc, ok := e.(ReviewChanged)
		assert.True(t, ok)
		assert.False(t, rc.TourID.IsZero())
		calls = append(calls, "second")
		return nil
	})
	bus.Subscribe(NameBookingCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "booking")
		return nil
	})

	bus.Publish(context.Background(), ReviewChanged{TourID: primitive.NewObjectID()})

	assert.Equal(t, []string{"first", "second"}, calls)
}
