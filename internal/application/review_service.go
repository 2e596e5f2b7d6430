package application

import (
	"context"
	"math"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/domain/auth"
	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/internal/domain/event"
	repo "github.com/oksasatya/tour-booking-api/internal/domain/repository"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
	"github.com/oksasatya/tour-booking-api/pkg/validation"
)

// ReviewInput is the client-writable part of a review. Tour is only read on
// the standalone route; the nested route takes it from the path.
type ReviewInput struct {
	Review *string             `json:"review"`
	Rating *int                `json:"rating"`
	Tour   *primitive.ObjectID `json:"tour"`
}

type ReviewService struct {
	Repo   repo.ReviewRepository
	Tours  repo.TourRepository
	Events event.Publisher
}

func NewReviewService(r repo.ReviewRepository, tours repo.TourRepository, events event.Publisher) *ReviewService {
	return &ReviewService{Repo: r, Tours: tours, Events: events}
}

func (s *ReviewService) List(ctx context.Context, tourID *primitive.ObjectID, params url.Values) ([]entity.Review, error) {
	return s.Repo.List(ctx, tourID, params)
}

func (s *ReviewService) Get(ctx context.Context, id primitive.ObjectID) (*entity.Review, error) {
	return s.Repo.GetByID(ctx, id)
}

// Create stores a review by the caller. pathTour, when set, wins over the
// tour in the body.
func (s *ReviewService) Create(ctx context.Context, p auth.Principal, pathTour *primitive.ObjectID, in ReviewInput) (*entity.Review, error) {
	rv := &entity.Review{UserID: p.UserID}
	switch {
	case pathTour != nil:
		rv.TourID = *pathTour
	case in.Tour != nil:
		rv.TourID = *in.Tour
	}
	if in.Review != nil {
		rv.Review = strings.TrimSpace(*in.Review)
	}
	if in.Rating != nil {
		rv.Rating = *in.Rating
	}
	if err := validation.Struct(rv); err != nil {
		return nil, err
	}
	if _, err := s.Tours.GetByID(ctx, rv.TourID); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, rv); err != nil {
		return nil, err
	}
	rv.User = &entity.UserRef{ID: p.UserID, Name: p.Name, Photo: p.Photo}
	s.Events.Publish(ctx, event.ReviewChanged{TourID: rv.TourID})
	return rv, nil
}

// Update changes text and rating. Only the author or an admin may edit.
func (s *ReviewService) Update(ctx context.Context, p auth.Principal, id primitive.ObjectID, in ReviewInput) (*entity.Review, error) {
	rv, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.Tour != nil && *in.Tour != rv.TourID {
		return nil, apperror.Validation("Invalid input data. tour cannot be changed", map[string]string{"tour": "cannot be changed"})
	}
	if in.Review != nil {
		rv.Review = strings.TrimSpace(*in.Review)
	}
	if in.Rating != nil {
		rv.Rating = *in.Rating
	}
	if err := validation.Struct(rv); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, rv); err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, event.ReviewChanged{TourID: rv.TourID})
	return rv, nil
}

func (s *ReviewService) Delete(ctx context.Context, p auth.Principal, id primitive.ObjectID) error {
	if _, err := s.owned(ctx, p, id); err != nil {
		return err
	}
	rv, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.Events.Publish(ctx, event.ReviewChanged{TourID: rv.TourID})
	return nil
}

func (s *ReviewService) owned(ctx context.Context, p auth.Principal, id primitive.ObjectID) (*entity.Review, error) {
	rv, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv.UserID != p.UserID && p.Role != entity.RoleAdmin {
		return nil, apperror.Forbidden("You can only change your own reviews")
	}
	return rv, nil
}

// RatingSubscriber recomputes ratingsQuantity and ratingsAverage of the tour
// named by a ReviewChanged event.
func RatingSubscriber(reviews repo.ReviewRepository, tours repo.TourRepository, logger *logrus.Logger) event.Handler {
	return func(ctx context.Context, e event.Event) error {
		changed, ok := e.(event.ReviewChanged)
		if !ok {
			return nil
		}
		return RecomputeRatings(ctx, reviews, tours, changed.TourID, logger)
	}
}

// RecomputeRatings aggregates the reviews of tourID and writes the result
// onto the tour. A tour without reviews gets count 0 and the default average.
func RecomputeRatings(ctx context.Context, reviews repo.ReviewRepository, tours repo.TourRepository, tourID primitive.ObjectID, logger *logrus.Logger) error {
	stats, err := reviews.RatingStats(ctx, tourID)
	if err != nil {
		return err
	}
	if stats.Count == 0 {
		stats = entity.RatingStats{Count: 0, Average: entity.DefaultRatingsAverage}
	} else {
		stats.Average = RoundRating(stats.Average)
	}
	err = tours.UpdateRatings(ctx, tourID, stats)
	if err != nil && apperror.KindOf(err) == apperror.KindNotFound {
		if logger != nil {
			logger.WithField("tour_id", tourID.Hex()).Debug("ratings not updated: tour is gone")
		}
		return nil
	}
	return err
}

// RoundRating keeps one decimal: 4.666 becomes 4.7.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
