package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review belongs to exactly one tour and one user; a user reviews a tour once.
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Review    string             `json:"review" bson:"review" validate:"required"`
	Rating    int                `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	TourID    primitive.ObjectID `json:"tour" bson:"tour" validate:"required"`
	UserID    primitive.ObjectID `json:"userId" bson:"user" validate:"required"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	Version   int                `json:"-" bson:"__v"`

	User *UserRef `json:"user,omitempty" bson:"-"`
}
