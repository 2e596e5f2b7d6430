package mongodb

import (
	"context"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/internal/domain/repository"
	"github.com/oksasatya/tour-booking-api/pkg/apifeatures"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

type BookingRepository struct {
	bookings *mongo.Collection
	tours    *mongo.Collection
	users    *mongo.Collection
}

var _ repository.BookingRepository = (*BookingRepository)(nil)

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{
		bookings: db.Collection(BookingsCollection),
		tours:    db.Collection(ToursCollection),
		users:    db.Collection(UsersCollection),
	}
}

func (r *BookingRepository) List(ctx context.Context, params url.Values) ([]entity.Booking, error) {
	q, err := apifeatures.Apply(nil, params, bookingSchema)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, q.Filter, q.FindOptions())
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]entity.Booking, error) {
	opts := options.Find().
		SetProjection(withoutVersion).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"user": userID}, opts)
}

func (r *BookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *BookingRepository) GetBySessionID(ctx context.Context, sessionID string) (*entity.Booking, error) {
	return r.findOne(ctx, bson.M{"sessionId": sessionID})
}

func (r *BookingRepository) Create(ctx context.Context, b *entity.Booking) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	b.Version = 0
	res, err := r.bookings.InsertOne(ctx, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("A booking for this checkout session already exists")
		}
		return translate(err, "booking")
	}
	b.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, b *entity.Booking) error {
	upd, err := updateDoc(b, "sessionId", "createdAt")
	if err != nil {
		return apperror.Internal("encode booking", err)
	}
	res, err := r.bookings.UpdateOne(ctx, bson.M{"_id": b.ID}, upd)
	if err != nil {
		return translate(err, "booking")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "booking")
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.bookings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "booking")
	}
	if res.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, "booking")
	}
	return nil
}

func (r *BookingRepository) findOne(ctx context.Context, filter bson.M) (*entity.Booking, error) {
	var b entity.Booking
	if err := r.bookings.FindOne(ctx, filter, options.FindOne().SetProjection(withoutVersion)).Decode(&b); err != nil {
		return nil, translate(err, "booking")
	}
	one := []entity.Booking{b}
	if err := r.populate(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *BookingRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]entity.Booking, error) {
	cur, err := r.bookings.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "booking")
	}
	out := []entity.Booking{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, translate(err, "booking")
	}
	if err := r.populate(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// populate attaches the booking user (public profile) and the tour name.
func (r *BookingRepository) populate(ctx context.Context, bookings []entity.Booking) error {
	userIDs := make([]primitive.ObjectID, 0, len(bookings))
	tourIDs := make([]primitive.ObjectID, 0, len(bookings))
	for _, b := range bookings {
		userIDs = append(userIDs, b.UserID)
		tourIDs = append(tourIDs, b.TourID)
	}
	users, err := userRefs(ctx, r.users, userIDs, true)
	if err != nil {
		return translate(err, "booking")
	}
	tours, err := tourRefs(ctx, r.tours, tourIDs)
	if err != nil {
		return translate(err, "booking")
	}
	for i := range bookings {
		bookings[i].User = users[bookings[i].UserID]
		bookings[i].Tour = tours[bookings[i].TourID]
	}
	return nil
}
