// Package auth defines the authenticated caller carried by a request context.
package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
)

// Principal is the verified caller. It is a value: handlers get a copy and
// cannot change what later middleware sees.
type Principal struct {
	UserID primitive.ObjectID
	Email  string
	Name   string
	Photo  string
	Role   entity.Role
}

// PrincipalOf builds the principal for a loaded user.
func PrincipalOf(u *entity.User) Principal {
	return Principal{UserID: u.ID, Email: u.Email, Name: u.Name, Photo: u.Photo, Role: u.Role}
}

// HasRole reports whether the principal holds one of roles.
func (p Principal) HasRole(roles ...entity.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// WithPrincipal returns a child context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFrom returns the principal stored by WithPrincipal.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
