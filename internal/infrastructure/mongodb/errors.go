package mongodb

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

// translate maps driver errors onto the API's error kinds. what names the
// resource for not-found messages.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperror.NotFound("No " + what + " found with that ID")
	case mongo.IsDuplicateKeyError(err):
		return apperror.Conflict("Duplicate " + what + ": a " + what + " with the same unique value already exists")
	default:
		var ae *apperror.Error
		if errors.As(err, &ae) {
			return err
		}
		return apperror.Internal(what+" store error", err)
	}
}
