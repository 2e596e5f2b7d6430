package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking is a paid (or admin-created) seat on a tour. SessionID is set when
// the booking comes from a completed checkout session.
type Booking struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TourID    primitive.ObjectID `json:"tourId" bson:"tour" validate:"required"`
	UserID    primitive.ObjectID `json:"userId" bson:"user" validate:"required"`
	Price     float64            `json:"price" bson:"price" validate:"required,gt=0"`
	Paid      bool               `json:"paid" bson:"paid"`
	SessionID string             `json:"sessionId,omitempty" bson:"sessionId,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	Version   int                `json:"-" bson:"__v"`

	Tour *TourRef `json:"tour,omitempty" bson:"-"`
	User *UserRef `json:"user,omitempty" bson:"-"`
}
