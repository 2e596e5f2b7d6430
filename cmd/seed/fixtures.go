package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
)

// Fixture files keep Mongo-style keys ("_id", "user", "tour") and plain
// passwords so they can be edited by hand.

type tourFixture struct {
	ID            string            `json:"_id"`
	Name          string            `json:"name"`
	Duration      int               `json:"duration"`
	MaxGroupSize  int               `json:"maxGroupSize"`
	Difficulty    string            `json:"difficulty"`
	Price         float64           `json:"price"`
	PriceDiscount float64           `json:"priceDiscount"`
	Summary       string            `json:"summary"`
	Description   string            `json:"description"`
	ImageCover    string            `json:"imageCover"`
	Images        []string          `json:"images"`
	StartDates    []time.Time       `json:"startDates"`
	StartLocation *entity.GeoPoint  `json:"startLocation"`
	Locations     []entity.GeoPoint `json:"locations"`
	Guides        []string          `json:"guides"`
}

type userFixture struct {
	ID       string      `json:"_id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     entity.Role `json:"role"`
	Photo    string      `json:"photo"`
	Password string      `json:"password"`
}

type reviewFixture struct {
	ID     string `json:"_id"`
	Review string `json:"review"`
	Rating int    `json:"rating"`
	User   string `json:"user"`
	Tour   string `json:"tour"`
}

func readFixture(dir, name string, dest any) error {
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// objectID parses hex, or allocates a fresh id when hex is empty.
func objectID(hex string) (primitive.ObjectID, error) {
	if hex == "" {
		return primitive.NewObjectID(), nil
	}
	return primitive.ObjectIDFromHex(hex)
}

func (f tourFixture) toEntity() (*entity.Tour, error) {
	id, err := objectID(f.ID)
	if err != nil {
		return nil, fmt.Errorf("tour %q: %w", f.Name, err)
	}
	guides := make([]primitive.ObjectID, 0, len(f.Guides))
	for _, g := range f.Guides {
		gid, err := primitive.ObjectIDFromHex(g)
		if err != nil {
			return nil, fmt.Errorf("tour %q guide: %w", f.Name, err)
		}
		guides = append(guides, gid)
	}
	return &entity.Tour{
		ID:             id,
		Name:           f.Name,
		Slug:           entity.Slugify(f.Name),
		Duration:       f.Duration,
		MaxGroupSize:   f.MaxGroupSize,
		Difficulty:     f.Difficulty,
		RatingsAverage: entity.DefaultRatingsAverage,
		Price:          f.Price,
		PriceDiscount:  f.PriceDiscount,
		Summary:        f.Summary,
		Description:    f.Description,
		ImageCover:     f.ImageCover,
		Images:         f.Images,
		StartDates:     f.StartDates,
		StartLocation:  f.StartLocation,
		Locations:      f.Locations,
		Guides:         guides,
	}, nil
}

func (f userFixture) toEntity(hash string) (*entity.User, error) {
	id, err := objectID(f.ID)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", f.Email, err)
	}
	role := f.Role
	if role == "" {
		role = entity.RoleUser
	}
	photo := f.Photo
	if photo == "" {
		photo = entity.DefaultPhoto
	}
	return &entity.User{ID: id, Name: f.Name, Email: f.Email, Role: role, Photo: photo, Password: hash}, nil
}

func (f reviewFixture) toEntity() (*entity.Review, error) {
	id, err := objectID(f.ID)
	if err != nil {
		return nil, fmt.Errorf("review: %w", err)
	}
	uid, err := primitive.ObjectIDFromHex(f.User)
	if err != nil {
		return nil, fmt.Errorf("review %s user: %w", f.ID, err)
	}
	tid, err := primitive.ObjectIDFromHex(f.Tour)
	if err != nil {
		return nil, fmt.Errorf("review %s tour: %w", f.ID, err)
	}
	return &entity.Review{ID: id, Review: f.Review, Rating: f.Rating, UserID: uid, TourID: tid}, nil
}
