package application

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/domain/auth"
	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	"github.com/oksasatya/tour-booking-api/internal/domain/event"
	repo "github.com/oksasatya/tour-booking-api/internal/domain/repository"
	"github.com/oksasatya/tour-booking-api/internal/infrastructure/payment"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
	tpl "github.com/oksasatya/tour-booking-api/pkg/mailer/templates"
	"github.com/oksasatya/tour-booking-api/pkg/validation"
)

// BookingInput is the admin create/update body.
type BookingInput struct {
	Tour  *primitive.ObjectID `json:"tour"`
	User  *primitive.ObjectID `json:"user"`
	Price *float64            `json:"price"`
	Paid  *bool               `json:"paid"`
}

type BookingService struct {
	Repo     repo.BookingRepository
	Tours    repo.TourRepository
	Users    repo.UserRepository
	Payments payment.Gateway
	Events   event.Publisher
	// BaseURL is the public origin used for checkout return pages.
	BaseURL string
	// ImageBaseURL prefixes tour cover file names in checkout pages.
	ImageBaseURL string
	Logger       *logrus.Logger
}

func NewBookingService(r repo.BookingRepository, tours repo.TourRepository, users repo.UserRepository, payments payment.Gateway, events event.Publisher, baseURL, imageBaseURL string, logger *logrus.Logger) *BookingService {
	return &BookingService{
		Repo:         r,
		Tours:        tours,
		Users:        users,
		Payments:     payments,
		Events:       events,
		BaseURL:      strings.TrimRight(baseURL, "/"),
		ImageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		Logger:       logger,
	}
}

// CheckoutSession opens a hosted payment page for tourID on behalf of p.
func (s *BookingService) CheckoutSession(ctx context.Context, p auth.Principal, tourID primitive.ObjectID) (*payment.CheckoutSession, error) {
	if s.Payments == nil {
		return nil, apperror.Upstream("Payments are not configured", nil)
	}
	t, err := s.Tours.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}
	req := payment.CheckoutRequest{
		TourID:        t.ID.Hex(),
		TourName:      t.Name,
		TourSummary:   t.Summary,
		Price:         t.Price,
		CustomerEmail: p.Email,
		SuccessURL:    s.BaseURL + "/my-tours?alert=booking",
		CancelURL:     s.BaseURL + "/tour/" + t.Slug,
	}
	if t.ImageCover != "" && s.ImageBaseURL != "" {
		req.ImageURL = s.ImageBaseURL + "/img/tours/" + t.ImageCover
	}
	return s.Payments.CreateCheckoutSession(ctx, req)
}

// HandleWebhook verifies a provider callback and books the completed
// checkout. A session is booked at most once.
func (s *BookingService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*entity.Booking, error) {
	if s.Payments == nil {
		return nil, apperror.Upstream("Payments are not configured", nil)
	}
	done, err := s.Payments.ParseWebhook(payload, signature)
	if err != nil {
		return nil, err
	}
	if done == nil {
		return nil, nil
	}
	existing, err := s.Repo.GetBySessionID(ctx, done.SessionID)
	if err == nil {
		return existing, nil
	}
	if apperror.KindOf(err) != apperror.KindNotFound {
		return nil, err
	}

	tourID, err := primitive.ObjectIDFromHex(done.TourID)
	if err != nil {
		return nil, apperror.Validation("Webhook error: unknown tour reference", map[string]string{"client_reference_id": "must be a tour id"})
	}
	u, err := s.Users.GetByEmail(ctx, done.CustomerEmail)
	if err != nil {
		return nil, err
	}
	b := &entity.Booking{
		TourID:    tourID,
		UserID:    u.ID,
		Price:     done.Amount,
		Paid:      true,
		SessionID: done.SessionID,
	}
	if err := validation.Struct(b); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		// A concurrent delivery of the same event won the insert.
		if apperror.KindOf(err) == apperror.KindConflict {
			return s.Repo.GetBySessionID(ctx, done.SessionID)
		}
		return nil, err
	}
	s.Events.Publish(ctx, event.BookingCreated{
		BookingID: b.ID,
		TourID:    b.TourID,
		UserID:    b.UserID,
		Price:     b.Price,
		SessionID: b.SessionID,
	})
	return b, nil
}

func (s *BookingService) MyBookings(ctx context.Context, p auth.Principal) ([]entity.Booking, error) {
	return s.Repo.ListByUser(ctx, p.UserID)
}

// MyTours returns the tours the caller has booked, each once.
func (s *BookingService) MyTours(ctx context.Context, p auth.Principal) ([]entity.Tour, error) {
	bookings, err := s.Repo.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	seen := map[primitive.ObjectID]bool{}
	tours := []entity.Tour{}
	for _, b := range bookings {
		if seen[b.TourID] {
			continue
		}
		seen[b.TourID] = true
		t, err := s.Tours.GetByID(ctx, b.TourID)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				continue
			}
			return nil, err
		}
		t.Reviews = nil
		tours = append(tours, *t)
	}
	return tours, nil
}

func (s *BookingService) List(ctx context.Context, params url.Values) ([]entity.Booking, error) {
	return s.Repo.List(ctx, params)
}

func (s *BookingService) Get(ctx context.Context, id primitive.ObjectID) (*entity.Booking, error) {
	return s.Repo.GetByID(ctx, id)
}

// Create books manually, without a payment session.
func (s *BookingService) Create(ctx context.Context, in BookingInput) (*entity.Booking, error) {
	b := &entity.Booking{Paid: true, CreatedAt: time.Now().UTC()}
	in.apply(b)
	if err := validation.Struct(b); err != nil {
		return nil, err
	}
	if _, err := s.Tours.GetByID(ctx, b.TourID); err != nil {
		return nil, err
	}
	if _, err := s.Users.GetByID(ctx, b.UserID); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) Update(ctx context.Context, id primitive.ObjectID, in BookingInput) (*entity.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(b)
	if err := validation.Struct(b); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.Repo.Delete(ctx, id)
}

func (in BookingInput) apply(b *entity.Booking) {
	if in.Tour != nil {
		b.TourID = *in.Tour
	}
	if in.User != nil {
		b.UserID = *in.User
	}
	if in.Price != nil {
		b.Price = *in.Price
	}
	if in.Paid != nil {
		b.Paid = *in.Paid
	}
}

// BookingConfirmationSubscriber emails the customer of a new booking.
func BookingConfirmationSubscriber(users repo.UserRepository, tours repo.TourRepository, notifier *Notifier) event.Handler {
	return func(ctx context.Context, e event.Event) error {
		created, ok := e.(event.BookingCreated)
		if !ok {
			return nil
		}
		u, err := users.GetByID(ctx, created.UserID)
		if err != nil {
			return err
		}
		t, err := tours.GetByID(ctx, created.TourID)
		if err != nil {
			return err
		}
		return notifier.Send(ctx, tpl.BookingConfirmed, u.Name, u.Email, tpl.WithBooking(t.Name, created.Price))
	}
}
