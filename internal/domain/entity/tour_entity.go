package entity

import (
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultRatingsAverage = 4.5

	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type" validate:"omitempty,eq=Point"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates" validate:"len=2"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Day         int       `json:"day,omitempty" bson:"day,omitempty"`
}

// Tour is a bookable tour. RatingsAverage and RatingsQuantity are derived from
// its reviews and only written by rating recomputation.
type Tour struct {
	ID              primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name            string               `json:"name" bson:"name" validate:"required,min=10,max=40"`
	Slug            string               `json:"slug" bson:"slug"`
	Duration        int                  `json:"duration" bson:"duration" validate:"required,gt=0"`
	MaxGroupSize    int                  `json:"maxGroupSize" bson:"maxGroupSize" validate:"required,gt=0"`
	Difficulty      string               `json:"difficulty" bson:"difficulty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64              `json:"ratingsAverage" bson:"ratingsAverage" validate:"min=1,max=5"`
	RatingsQuantity int                  `json:"ratingsQuantity" bson:"ratingsQuantity" validate:"min=0"`
	Price           float64              `json:"price" bson:"price" validate:"required,gt=0"`
	PriceDiscount   float64              `json:"priceDiscount,omitempty" bson:"priceDiscount,omitempty" validate:"omitempty,gte=0,ltfield=Price"`
	Summary         string               `json:"summary" bson:"summary" validate:"required"`
	Description     string               `json:"description,omitempty" bson:"description,omitempty"`
	ImageCover      string               `json:"imageCover" bson:"imageCover" validate:"required"`
	Images          []string             `json:"images" bson:"images"`
	StartDates      []time.Time          `json:"startDates" bson:"startDates"`
	StartLocation   *GeoPoint            `json:"startLocation,omitempty" bson:"startLocation,omitempty" validate:"omitempty"`
	Locations       []GeoPoint           `json:"locations,omitempty" bson:"locations,omitempty" validate:"dive"`
	Guides          []primitive.ObjectID `json:"guides,omitempty" bson:"guides,omitempty"`
	CreatedAt       time.Time            `json:"createdAt" bson:"createdAt"`
	Version         int                  `json:"-" bson:"__v"`

	Reviews []Review `json:"reviews,omitempty" bson:"-"`
}

// TourRef is the reduced tour projection embedded into bookings.
type TourRef struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
}

// Slugify lower-cases name and joins its alphanumeric runs with dashes:
// "The Forest Hiker" becomes "the-forest-hiker".
func Slugify(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}
