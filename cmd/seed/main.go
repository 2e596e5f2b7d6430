package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/tour-booking-api/config"
	"github.com/oksasatya/tour-booking-api/internal/application"
	"github.com/oksasatya/tour-booking-api/internal/infrastructure/mongodb"
	"github.com/oksasatya/tour-booking-api/pkg/helpers"
)

// seed loads or wipes the development fixtures:
//
//	go run ./cmd/seed -import
//	go run ./cmd/seed -delete
func main() {
	importData := flag.Bool("import", false, "import fixtures from -dir")
	deleteData := flag.Bool("delete", false, "delete tours, users, reviews and bookings")
	dir := flag.String("dir", "dev-data", "fixture directory")
	flag.Parse()
	if *importData == *deleteData {
		log.Fatal("use exactly one of -import or -delete")
	}

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	client, err := mongodb.NewClient(ctx, cfg.MongoURI, cfg.MongoMaxPool)
	if err != nil {
		logger.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDB)

	if *deleteData {
		if err := wipe(ctx, db); err != nil {
			logger.Fatalf("delete failed: %v", err)
		}
		logger.Info("data successfully deleted")
		return
	}

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalf("failed to create indexes: %v", err)
	}
	if err := load(ctx, db, *dir, helpers.NewPasswordHasher(cfg.BcryptCost), logger); err != nil {
		logger.Fatalf("import failed: %v", err)
	}
	logger.Info("data successfully loaded")
}

func wipe(ctx context.Context, db *mongo.Database) error {
	for _, name := range []string{
		mongodb.ReviewsCollection,
		mongodb.BookingsCollection,
		mongodb.ToursCollection,
		mongodb.UsersCollection,
	} {
		if _, err := db.Collection(name).DeleteMany(ctx, struct{}{}); err != nil {
			return err
		}
	}
	return nil
}

func load(ctx context.Context, db *mongo.Database, dir string, hasher *helpers.PasswordHasher, logger *logrus.Logger) error {
	var (
		tours   []tourFixture
		users   []userFixture
		reviews []reviewFixture
	)
	if err := readFixture(dir, "tours.json", &tours); err != nil {
		return err
	}
	if err := readFixture(dir, "users.json", &users); err != nil {
		return err
	}
	if err := readFixture(dir, "reviews.json", &reviews); err != nil {
		return err
	}

	tourRepo := mongodb.NewTourRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	reviewRepo := mongodb.NewReviewRepository(db)

	tourIDs := make([]primitive.ObjectID, 0, len(tours))
	for _, f := range tours {
		t, err := f.toEntity()
		if err != nil {
			return err
		}
		if err := tourRepo.Create(ctx, t); err != nil {
			return err
		}
		tourIDs = append(tourIDs, t.ID)
	}

	for _, f := range users {
		hash, err := hasher.Hash(f.Password)
		if err != nil {
			return err
		}
		u, err := f.toEntity(hash)
		if err != nil {
			return err
		}
		if err := userRepo.Create(ctx, u); err != nil {
			return err
		}
	}

	for _, f := range reviews {
		rv, err := f.toEntity()
		if err != nil {
			return err
		}
		if err := reviewRepo.Create(ctx, rv); err != nil {
			return err
		}
	}

	for _, id := range tourIDs {
		if err := application.RecomputeRatings(ctx, reviewRepo, tourRepo, id, logger); err != nil {
			return err
		}
	}
	logger.WithFields(logrus.Fields{"tours": len(tours), "users": len(users), "reviews": len(reviews)}).Info("fixtures imported")
	return nil
}
