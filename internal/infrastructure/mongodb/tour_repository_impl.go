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

type TourRepository struct {
	tours   *mongo.Collection
	reviews *ReviewRepository
}

var _ repository.TourRepository = (*TourRepository)(nil)

func NewTourRepository(db *mongo.Database) *TourRepository {
	return &TourRepository{
		tours:   db.Collection(ToursCollection),
		reviews: NewReviewRepository(db),
	}
}

func (r *TourRepository) List(ctx context.Context, params url.Values) ([]entity.Tour, error) {
	q, err := apifeatures.Apply(nil, params, tourSchema)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, q.Filter, q.FindOptions())
}

// GetByID returns the tour with its reviews populated.
func (r *TourRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Tour, error) {
	var t entity.Tour
	err := r.tours.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutVersion)).Decode(&t)
	if err != nil {
		return nil, translate(err, "tour")
	}
	reviews, err := r.reviews.ListByTour(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Reviews = reviews
	return &t, nil
}

func (r *TourRepository) Create(ctx context.Context, t *entity.Tour) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.Version = 0
	res, err := r.tours.InsertOne(ctx, t)
	if err != nil {
		return translate(err, "tour")
	}
	t.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Update writes every client-editable field. Ratings are left to
// UpdateRatings.
func (r *TourRepository) Update(ctx context.Context, t *entity.Tour) error {
	upd, err := updateDoc(t, "ratingsAverage", "ratingsQuantity", "createdAt")
	if err != nil {
		return apperror.Internal("encode tour", err)
	}
	res, err := r.tours.UpdateOne(ctx, bson.M{"_id": t.ID}, upd)
	if err != nil {
		return translate(err, "tour")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "tour")
	}
	return nil
}

func (r *TourRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.tours.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "tour")
	}
	if res.DeletedCount == 0 {
		return translate(mongo.ErrNoDocuments, "tour")
	}
	return nil
}

func (r *TourRepository) UpdateRatings(ctx context.Context, id primitive.ObjectID, stats entity.RatingStats) error {
	res, err := r.tours.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"ratingsQuantity": stats.Count,
		"ratingsAverage":  stats.Average,
	}})
	if err != nil {
		return translate(err, "tour")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "tour")
	}
	return nil
}

// WithinRadius returns tours whose start location lies within radius radians
// of [lng, lat].
func (r *TourRepository) WithinRadius(ctx context.Context, lng, lat, radius float64) ([]entity.Tour, error) {
	return r.find(ctx, WithinRadiusFilter(lng, lat, radius), options.Find().SetProjection(withoutVersion))
}

func (r *TourRepository) Statistics(ctx context.Context) ([]entity.TourStatistic, error) {
	pipeline, err := TourStatisticsPipeline(StatisticsMinRating)
	if err != nil {
		return nil, err
	}
	out := []entity.TourStatistic{}
	if err := r.aggregate(ctx, pipeline, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]entity.MonthlyPlan, error) {
	pipeline, err := MonthlyPlanPipeline(year)
	if err != nil {
		return nil, err
	}
	out := []entity.MonthlyPlan{}
	if err := r.aggregate(ctx, pipeline, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TourRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]entity.Tour, error) {
	cur, err := r.tours.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "tour")
	}
	out := []entity.Tour{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, translate(err, "tour")
	}
	return out, nil
}

func (r *TourRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cur, err := r.tours.Aggregate(ctx, pipeline)
	if err != nil {
		return translate(err, "tour")
	}
	if err := cur.All(ctx, out); err != nil {
		return translate(err, "tour")
	}
	return nil
}
