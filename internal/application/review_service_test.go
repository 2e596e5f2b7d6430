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
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

type reviewFixture struct {
	svc     *ReviewService
	reviews *fakeReviews
	tours   *fakeTours
	bus     *recordingBus
	tour    entity.Tour
}

func newReviewFixture(t *testing.T) reviewFixture {
	t.Helper()
	tours := newFakeTours()
	reviews := newFakeReviews()
	bus := event.NewBus(nil)
	bus.Subscribe(event.NameReviewChanged, RatingSubscriber(reviews, tours, nil))
	rec := &recordingBus{next: bus}
	tour := tours.add(entity.Tour{Name: "The Sea Explorer", RatingsAverage: entity.DefaultRatingsAverage})
	return reviewFixture{
		svc:     NewReviewService(reviews, tours, rec),
		reviews: reviews,
		tours:   tours,
		bus:     rec,
		tour:    tour,
	}
}

func principal(role entity.Role) auth.Principal {
	return auth.Principal{UserID: primitive.NewObjectID(), Name: "Laura Wilson", Role: role}
}

func (f reviewFixture) ratings(t *testing.T) (int, float64) {
	t.Helper()
	tour, err := f.tours.GetByID(context.Background(), f.tour.ID)
	require.NoError(t, err)
	return tour.RatingsQuantity, tour.RatingsAverage
}

func TestReviewLifecycleRecomputesRatings(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	a, b, c := principal(entity.RoleUser), principal(entity.RoleUser), principal(entity.RoleUser)

	r1, err := f.svc.Create(ctx, a, &f.tour.ID, ReviewInput{Review: ptr("Great"), Rating: ptr(5)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, b, &f.tour.ID, ReviewInput{Review: ptr("Good"), Rating: ptr(4)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, c, &f.tour.ID, ReviewInput{Review: ptr("Good"), Rating: ptr(5)})
	require.NoError(t, err)

	n, avg := f.ratings(t)
	assert.Equal(t, 3, n)
	assert.Equal(t, 4.7, avg)

	_, err = f.svc.Update(ctx, a, r1.ID, ReviewInput{Rating: ptr(1)})
	require.NoError(t, err)
	n, avg = f.ratings(t)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3.3, avg)

	for _, r := range f.reviews.items {
		owner := auth.Principal{UserID: r.UserID, Role: entity.RoleUser}
		require.NoError(t, f.svc.Delete(ctx, owner, r.ID))
	}
	n, avg = f.ratings(t)
	assert.Equal(t, 0, n)
	assert.Equal(t, entity.DefaultRatingsAverage, avg)
	assert.Len(t, f.bus.events, 7)
}

func TestReviewCreateTakesTourFromPath(t *testing.T) {
	f := newReviewFixture(t)
	other := primitive.NewObjectID()

	rv, err := f.svc.Create(context.Background(), principal(entity.RoleUser), &f.tour.ID, ReviewInput{Review: ptr("Nice"), Rating: ptr(4), Tour: &other})
	require.NoError(t, err)
	assert.Equal(t, f.tour.ID, rv.TourID)
	require.NotNil(t, rv.User)
	assert.Equal(t, "Laura Wilson", rv.User.Name)
}

func TestReviewCreateRejections(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	p := principal(entity.RoleUser)

	_, err := f.svc.Create(ctx, p, &f.tour.ID, ReviewInput{Review: ptr("Too good"), Rating: ptr(6)})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	missing := primitive.NewObjectID()
	_, err = f.svc.Create(ctx, p, &missing, ReviewInput{Review: ptr("Nice"), Rating: ptr(4)})
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.svc.Create(ctx, p, nil, ReviewInput{Review: ptr("Nice"), Rating: ptr(4)})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.svc.Create(ctx, p, &f.tour.ID, ReviewInput{Review: ptr("Nice"), Rating: ptr(4)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, p, &f.tour.ID, ReviewInput{Review: ptr("Again"), Rating: ptr(3)})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	assert.Len(t, f.bus.events, 1)
}

func TestReviewOwnership(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	author := principal(entity.RoleUser)
	rv, err := f.svc.Create(ctx, author, &f.tour.ID, ReviewInput{Review: ptr("Nice"), Rating: ptr(4)})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, principal(entity.RoleUser), rv.ID, ReviewInput{Rating: ptr(1)})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(f.svc.Delete(ctx, principal(entity.RoleUser), rv.ID)))

	_, err = f.svc.Update(ctx, principal(entity.RoleAdmin), rv.ID, ReviewInput{Rating: ptr(2)})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, principal(entity.RoleAdmin), rv.ID))
}

func TestRecomputeRatingsIgnoresDeletedTour(t *testing.T) {
	reviews := newFakeReviews()
	tours := newFakeTours()
	err := RecomputeRatings(context.Background(), reviews, tours, primitive.NewObjectID(), nil)
	assert.NoError(t, err)
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.7, RoundRating(4.666666))
	assert.Equal(t, 4.0, RoundRating(4.04))
}
