package mongodb

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

const (
	// StatisticsMinRating is the rating floor of the statistics report.
	StatisticsMinRating = 4.5

	monthlyPlanMaxRows = 12
)

// TourStatisticsPipeline groups well rated tours by upper-cased difficulty
// and orders the tiers by average price.
func TourStatisticsPipeline(minRating float64) (mongo.Pipeline, error) {
	group := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$toUpper", Value: "$difficulty"}}},
		{Key: "numTours", Value: bson.D{{Key: "$sum", Value: 1}}},
		{Key: "numRatings", Value: bson.D{{Key: "$sum", Value: "$ratingsQuantity"}}},
		{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$ratingsAverage"}}},
		{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: "$price"}}},
		{Key: "minPrice", Value: bson.D{{Key: "$min", Value: "$price"}}},
		{Key: "maxPrice", Value: bson.D{{Key: "$max", Value: "$price"}}},
	}
	sort := bson.D{{Key: "avgPrice", Value: 1}}
	if err := VerifySortKeys(keysOf(group), sort); err != nil {
		return nil, err
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "ratingsAverage", Value: bson.D{{Key: "$gte", Value: minRating}}}}}},
		{{Key: "$group", Value: group}},
		{{Key: "$sort", Value: sort}},
	}, nil
}

// MonthlyPlanPipeline expands start dates into one row per date, keeps the
// ones inside year and counts starts per calendar month, busiest first.
func MonthlyPlanPipeline(year int) (mongo.Pipeline, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	group := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$month", Value: "$startDates"}}},
		{Key: "numTourStarts", Value: bson.D{{Key: "$sum", Value: 1}}},
		{Key: "tours", Value: bson.D{{Key: "$push", Value: "$name"}}},
	}
	addFields := bson.D{{Key: "month", Value: "$_id"}}
	sort := bson.D{{Key: "numTourStarts", Value: -1}, {Key: "month", Value: 1}}

	shape := append(keysOf(group), keysOf(addFields)...)
	if err := VerifySortKeys(shape, sort); err != nil {
		return nil, err
	}
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$startDates"}},
		{{Key: "$match", Value: bson.D{{Key: "startDates", Value: bson.D{
			{Key: "$gte", Value: primitive.NewDateTimeFromTime(from)},
			{Key: "$lt", Value: primitive.NewDateTimeFromTime(to)},
		}}}}},
		{{Key: "$group", Value: group}},
		{{Key: "$addFields", Value: addFields}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}}}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$limit", Value: monthlyPlanMaxRows}},
	}, nil
}

// RatingStatsPipeline aggregates every review of a tour into count and
// average rating.
func RatingStatsPipeline(tourID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "tour", Value: tourID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tour"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "average", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
		}}},
	}
}

// WithinRadiusFilter matches tours starting inside a sphere of radius
// (radians) around [lng, lat].
func WithinRadiusFilter(lng, lat, radius float64) bson.M {
	return bson.M{"startLocation": bson.M{
		"$geoWithin": bson.M{"$centerSphere": bson.A{bson.A{lng, lat}, radius}},
	}}
}

// VerifySortKeys fails when a sort stage refers to a field the preceding
// stages never produce. Such a sort silently becomes a no-op in the server.
func VerifySortKeys(shape []string, sort bson.D) error {
	have := make(map[string]bool, len(shape))
	for _, k := range shape {
		have[k] = true
	}
	for _, e := range sort {
		if !have[e.Key] {
			return apperror.Internal("invalid aggregation", fmt.Errorf("sort key %q is not produced by the pipeline", e.Key))
		}
	}
	return nil
}

func keysOf(d bson.D) []string {
	out := make([]string, 0, len(d))
	for _, e := range d {
		out = append(out, e.Key)
	}
	return out
}
