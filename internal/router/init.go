package router

import (
	"strings"

	"github.com/oksasatya/tour-booking-api/internal/application"
	"github.com/oksasatya/tour-booking-api/internal/container"
	"github.com/oksasatya/tour-booking-api/internal/domain/event"
	repo "github.com/oksasatya/tour-booking-api/internal/domain/repository"
	"github.com/oksasatya/tour-booking-api/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/tour-booking-api/internal/infrastructure/postgres"
	"github.com/oksasatya/tour-booking-api/internal/infrastructure/search"
	"github.com/oksasatya/tour-booking-api/internal/infrastructure/storage"
	handlers "github.com/oksasatya/tour-booking-api/internal/interface/http"
	"github.com/oksasatya/tour-booking-api/internal/router/modules"
	"github.com/oksasatya/tour-booking-api/pkg/helpers"
	tpl "github.com/oksasatya/tour-booking-api/pkg/mailer/templates"
)

type Deps struct {
	Tours    *application.TourService
	Reviews  *application.ReviewService
	Users    *application.UserService
	Auth     *application.AuthService
	Bookings *application.BookingService
}

// optional collaborators stay untyped nil when their backend is disabled so
// services can compare them against nil.
func searcher() application.TourSearcher {
	cfg := container.GetConfig()
	if es := container.GetES(); es != nil && cfg.SearchEnabled {
		return search.NewTourIndex(es, cfg.ESToursIndex)
	}
	return nil
}

func imageStore() application.ImageStore {
	if gcs := container.GetGCS(); gcs != nil {
		return storage.NewImages(storage.NewGCSUploader(gcs, container.GetConfig().GCSBucket))
	}
	return nil
}

func auditRepo() repo.AuditRepository {
	if pool := container.GetPGPool(); pool != nil {
		return pginfra.NewAuditRepository(pool)
	}
	return nil
}

func jobPublisher() application.JobPublisher {
	if p := container.GetRabbitPub(); p != nil {
		return p
	}
	return nil
}

// BuildDeps wires repositories, services and event subscribers from the
// container singletons.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	db := container.GetMongo()
	bus := container.GetBus()

	tourRepo := mongodb.NewTourRepository(db)
	reviewRepo := mongodb.NewReviewRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	bookingRepo := mongodb.NewBookingRepository(db)

	images := imageStore()
	notifier := application.NewNotifier(
		jobPublisher(),
		tpl.Brand{CompanyName: cfg.CompanyName, SupportURL: cfg.SupportURL},
		cfg.MailSendEnabled,
		logger,
	)

	authSvc := application.NewAuthService(
		userRepo,
		helpers.NewPasswordHasher(cfg.BcryptCost),
		container.GetJWT(),
		application.NewRedisResetTokens(container.GetRedis()),
		notifier,
		auditRepo(),
		cfg.ResetPasswordURL,
		logger,
	)
	authSvc.AccountURL = strings.TrimRight(cfg.PublicBaseURL, "/") + "/me"

	bus.Subscribe(event.NameReviewChanged, application.RatingSubscriber(reviewRepo, tourRepo, logger))
	bus.Subscribe(event.NameBookingCreated, application.BookingConfirmationSubscriber(userRepo, tourRepo, notifier))

	return Deps{
		Tours:   application.NewTourService(tourRepo, searcher(), images, logger),
		Reviews: application.NewReviewService(reviewRepo, tourRepo, bus),
		Users:   application.NewUserService(userRepo, images),
		Auth:    authSvc,
		Bookings: application.NewBookingService(
			bookingRepo, tourRepo, userRepo,
			container.GetPayments(), bus,
			strings.TrimRight(cfg.PublicBaseURL, "/"), cfg.ImageBaseURL(),
			logger,
		),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	rdb := container.GetRedis()
	d := BuildDeps()

	tourH := handlers.NewTourHandler(d.Tours)
	reviewH := handlers.NewReviewHandler(d.Reviews)
	bookingH := handlers.NewBookingHandler(d.Bookings)
	authH := handlers.NewAuthHandler(d.Auth, helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure))

	r.Add(modules.NewTourModule(tourH, reviewH, d.Auth))
	r.Add(modules.NewReviewModule(reviewH, d.Auth))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(d.Users), authH, d.Auth, rdb))
	r.Add(modules.NewBookingModule(bookingH, d.Auth))
	if cfg.DebugMetricsEnabled {
		r.AddAPI(modules.NewDebugModule(rdb))
	}
	r.AddRoot(modules.NewWebhookModule(bookingH))
}
