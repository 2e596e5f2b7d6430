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

type ReviewRepository struct {
	reviews *mongo.Collection
	users   *mongo.Collection
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		reviews: db.Collection(ReviewsCollection),
		users:   db.Collection(UsersCollection),
	}
}

// List runs the query features over reviews, restricted to one tour when
// tourID is set (nested route).
func (r *ReviewRepository) List(ctx context.Context, tourID *primitive.ObjectID, params url.Values) ([]entity.Review, error) {
	var base bson.M
	if tourID != nil {
		base = bson.M{"tour": *tourID}
	}
	q, err := apifeatures.Apply(base, params, reviewSchema)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, q.Filter, q.FindOptions())
}

func (r *ReviewRepository) ListByTour(ctx context.Context, tourID primitive.ObjectID) ([]entity.Review, error) {
	opts := options.Find().
		SetProjection(withoutVersion).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"tour": tourID}, opts)
}

func (r *ReviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error) {
	var rv entity.Review
	err := r.reviews.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutVersion)).Decode(&rv)
	if err != nil {
		return nil, translate(err, "review")
	}
	one := []entity.Review{rv}
	if err := r.populate(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *ReviewRepository) Create(ctx context.Context, rv *entity.Review) error {
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	rv.Version = 0
	res, err := r.reviews.InsertOne(ctx, rv)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("You have already reviewed this tour")
		}
		return translate(err, "review")
	}
	rv.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Update rewrites text and rating. Tour and author of a review never change.
func (r *ReviewRepository) Update(ctx context.Context, rv *entity.Review) error {
	res, err := r.reviews.UpdateOne(ctx, bson.M{"_id": rv.ID}, bson.M{
		"$set": bson.M{"review": rv.Review, "rating": rv.Rating},
		"$inc": bson.M{apifeatures.VersionField: 1},
	})
	if err != nil {
		return translate(err, "review")
	}
	if res.MatchedCount == 0 {
		return translate(mongo.ErrNoDocuments, "review")
	}
	return nil
}

// Delete removes the review and returns it so callers know the affected tour.
func (r *ReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) (*entity.Review, error) {
	var rv entity.Review
	if err := r.reviews.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&rv); err != nil {
		return nil, translate(err, "review")
	}
	return &rv, nil
}

// RatingStats aggregates the reviews of a tour. No reviews yields Count 0.
func (r *ReviewRepository) RatingStats(ctx context.Context, tourID primitive.ObjectID) (entity.RatingStats, error) {
	cur, err := r.reviews.Aggregate(ctx, RatingStatsPipeline(tourID))
	if err != nil {
		return entity.RatingStats{}, translate(err, "review")
	}
	var rows []entity.RatingStats
	if err := cur.All(ctx, &rows); err != nil {
		return entity.RatingStats{}, translate(err, "review")
	}
	if len(rows) == 0 {
		return entity.RatingStats{}, nil
	}
	return rows[0], nil
}

func (r *ReviewRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]entity.Review, error) {
	cur, err := r.reviews.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "review")
	}
	out := []entity.Review{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, translate(err, "review")
	}
	if err := r.populate(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// populate attaches author name and photo.
func (r *ReviewRepository) populate(ctx context.Context, reviews []entity.Review) error {
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.UserID)
	}
	refs, err := userRefs(ctx, r.users, ids, false)
	if err != nil {
		return translate(err, "review")
	}
	for i := range reviews {
		reviews[i].User = refs[reviews[i].UserID]
	}
	return nil
}
