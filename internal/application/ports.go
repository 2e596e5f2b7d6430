package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/internal/infrastructure/search"
)

// JobPublisher queues background jobs (emails). helpers.RabbitPublisher
// implements it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// TourSearcher mirrors tours into a full-text index.
type TourSearcher interface {
	Index(ctx context.Context, t *entity.Tour) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]search.TourHit, error)
}

// ImageStore resizes and stores uploaded images, returning file names.
type ImageStore interface {
	SaveUserPhoto(ctx context.Context, userID string, r io.Reader) (string, error)
	SaveTourCover(ctx context.Context, tourID string, r io.Reader) (string, error)
	SaveTourImage(ctx context.Context, tourID string, n int, r io.Reader) (string, error)
}

// ResetTokenStore keeps password reset digests until they are used or expire.
type ResetTokenStore interface {
	Save(ctx context.Context, digest, userID string, ttl time.Duration) error
	// Take returns the user id for digest and forgets it.
	Take(ctx context.Context, digest string) (userID string, found bool, err error)
}
