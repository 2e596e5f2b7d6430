package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultPhoto = "default.jpg"

// User is the aggregate root for accounts.
// Password is a bcrypt hash and, like Active, never leaves the API.
type User struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name              string             `json:"name" bson:"name" validate:"required,max=60"`
	Email             string             `json:"email" bson:"email" validate:"required,email"`
	Photo             string             `json:"photo" bson:"photo"`
	Role              Role               `json:"role" bson:"role" validate:"required,oneof=user guide lead-guide admin"`
	Password          string             `json:"-" bson:"password,omitempty"`
	PasswordChangedAt *time.Time         `json:"-" bson:"passwordChangedAt,omitempty"`
	Active            bool               `json:"-" bson:"active"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	Version           int                `json:"-" bson:"__v"`
}

// ChangedPasswordAfter reports whether the password was changed after a token
// issued at iat. Token timestamps have second precision.
func (u *User) ChangedPasswordAfter(iat time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > iat.Unix()
}

// Ref returns the reduced profile embedded into reviews and bookings.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Photo: u.Photo}
}

// UserRef is a populated user reference.
type UserRef struct {
	ID    primitive.ObjectID `json:"id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email,omitempty" bson:"email,omitempty"`
	Photo string             `json:"photo,omitempty" bson:"photo,omitempty"`
}
