package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/domain/auth"
	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/internal/domain/event"
	"github.com/oksasatya/tour-booking-api/internal/infrastructure/payment"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
	"github.com/oksasatya/tour-booking-api/pkg/mailer"
	tpl "github.com/oksasatya/tour-booking-api/pkg/mailer/templates"
)

type bookingFixture struct {
	svc      *BookingService
	bookings *fakeBookings
	gateway  *fakeGateway
	pub      *fakePublisher
	bus      *recordingBus
	tour     entity.Tour
	user     entity.User
}

func newBookingFixture(t *testing.T) bookingFixture {
	t.Helper()
	tours := newFakeTours()
	users := newFakeUsers()
	bookings := newFakeBookings()
	gateway := &fakeGateway{}
	pub := &fakePublisher{}

	bus := event.NewBus(nil)
	bus.Subscribe(event.NameBookingCreated, BookingConfirmationSubscriber(users, tours, NewNotifier(pub, tpl.Brand{}, true, nil)))
	rec := &recordingBus{next: bus}

	tour := tours.add(entity.Tour{Name: "The Park Camper", Slug: "the-park-camper", Price: 1497, ImageCover: "tour-5-cover.jpg", Summary: "Camp"})
	user := users.add(entity.User{Name: "Lourdes Browning", Email: "loulou@example.com"})
	return bookingFixture{
		svc:      NewBookingService(bookings, tours, users, gateway, rec, "https://natours.example/", "https://cdn.example", nil),
		bookings: bookings,
		gateway:  gateway,
		pub:      pub,
		bus:      rec,
		tour:     tour,
		user:     user,
	}
}

func TestCheckoutSession(t *testing.T) {
	f := newBookingFixture(t)
	p := auth.PrincipalOf(&f.user)

	sess, err := f.svc.CheckoutSession(context.Background(), p, f.tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", sess.ID)

	require.Len(t, f.gateway.requests, 1)
	req := f.gateway.requests[0]
	assert.Equal(t, f.tour.ID.Hex(), req.TourID)
	assert.Equal(t, 1497.0, req.Price)
	assert.Equal(t, "loulou@example.com", req.CustomerEmail)
	assert.Equal(t, "https://natours.example/tour/the-park-camper", req.CancelURL)
	assert.Equal(t, "https://cdn.example/img/tours/tour-5-cover.jpg", req.ImageURL)

	_, err = f.svc.CheckoutSession(context.Background(), p, primitive.NewObjectID())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestWebhookCreatesOneBookingPerSession(t *testing.T) {
	f := newBookingFixture(t)
	f.gateway.completed = &payment.CompletedSession{
		SessionID:     "cs_test_42",
		TourID:        f.tour.ID.Hex(),
		CustomerEmail: "loulou@example.com",
		Amount:        1497,
	}

	first, err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	second, err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.bookings.items, 1)
	assert.Equal(t, 1497.0, first.Price)
	assert.True(t, first.Paid)
	assert.Equal(t, f.user.ID, first.UserID)

	assert.Len(t, f.bus.events, 1)
	require.Len(t, f.pub.jobs, 1)
	job := f.pub.jobs[0].(mailer.EmailJob)
	assert.Equal(t, tpl.BookingConfirmed, job.Template)
	assert.Equal(t, "The Park Camper", job.Data["TourName"])
}

func TestWebhookBadSignatureBooksNothing(t *testing.T) {
	f := newBookingFixture(t)
	f.gateway.err = apperror.Validation("Webhook error: bad signature", nil)

	_, err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "bad")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Empty(t, f.bookings.items)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	f := newBookingFixture(t)
	b, err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.Empty(t, f.bookings.items)
}

func TestMyBookingsAndTours(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := f.svc.Create(ctx, BookingInput{Tour: &f.tour.ID, User: &f.user.ID, Price: ptr(1497.0)})
		require.NoError(t, err)
	}
	p := auth.PrincipalOf(&f.user)

	mine, err := f.svc.MyBookings(ctx, p)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	tours, err := f.svc.MyTours(ctx, p)
	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.Equal(t, f.tour.ID, tours[0].ID)
}

func TestAdminBookingCrud(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, BookingInput{Tour: &f.tour.ID, User: &f.user.ID})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	missing := primitive.NewObjectID()
	_, err = f.svc.Create(ctx, BookingInput{Tour: &missing, User: &f.user.ID, Price: ptr(10.0)})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	b, err := f.svc.Create(ctx, BookingInput{Tour: &f.tour.ID, User: &f.user.ID, Price: ptr(10.0)})
	require.NoError(t, err)
	updated, err := f.svc.Update(ctx, b.ID, BookingInput{Paid: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.Paid)

	require.NoError(t, f.svc.Delete(ctx, b.ID))
	_, err = f.svc.Get(ctx, b.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
