// Package repository declares the persistence contracts of the domain.
// Implementations convert a missing document into ErrNotFound-kind errors,
// a unique-key violation into a Conflict and a malformed id into a
// ValidationFailed error (see pkg/apperror).
package repository

import (
	"context"
	"net/url"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
)

type TourRepository interface {
	List(ctx context.Context, params url.Values) ([]entity.Tour, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Tour, error)
	Create(ctx context.Context, t *entity.Tour) error
	Update(ctx context.Context, t *entity.Tour) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	UpdateRatings(ctx context.Context, id primitive.ObjectID, stats entity.RatingStats) error
	WithinRadius(ctx context.Context, lng, lat, radius float64) ([]entity.Tour, error)
	Statistics(ctx context.Context) ([]entity.TourStatistic, error)
	MonthlyPlan(ctx context.Context, year int) ([]entity.MonthlyPlan, error)
}

type ReviewRepository interface {
	List(ctx context.Context, tourID *primitive.ObjectID, params url.Values) ([]entity.Review, error)
	ListByTour(ctx context.Context, tourID primitive.ObjectID) ([]entity.Review, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error)
	Create(ctx context.Context, r *entity.Review) error
	Update(ctx context.Context, r *entity.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) (*entity.Review, error)
	RatingStats(ctx context.Context, tourID primitive.ObjectID) (entity.RatingStats, error)
}

type UserRepository interface {
	List(ctx context.Context, params url.Values) ([]entity.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	// GetByEmail returns the user including the password hash.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByIDWithPassword returns the user including the password hash.
	GetByIDWithPassword(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type BookingRepository interface {
	List(ctx context.Context, params url.Values) ([]entity.Booking, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]entity.Booking, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error)
	GetBySessionID(ctx context.Context, sessionID string) (*entity.Booking, error)
	Create(ctx context.Context, b *entity.Booking) error
	Update(ctx context.Context, b *entity.Booking) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AuditEntry is one authentication event.
type AuditEntry struct {
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
}

type AuditRepository interface {
	Insert(ctx context.Context, e AuditEntry) error
}
