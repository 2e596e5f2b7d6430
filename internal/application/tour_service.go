package application

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/tour-booking-api/internal/domain/entity"
	repo "github.com/oksasatya/tour-booking-api/internal/domain/repository"
	"github.com/oksasatya/tour-booking-api/internal/infrastructure/search"
	"github.com/oksasatya/tour-booking-api/pkg/apperror"
	"github.com/oksasatya/tour-booking-api/pkg/validation"
)

// Earth radius used to turn a distance into radians for $centerSphere.
const (
	EarthRadiusMiles = 3963.2
	EarthRadiusKm    = 6378.1

	minPlanYear = 1970
	maxPlanYear = 9999
)

// TourInput is the client-writable part of a tour. Nil fields are left
// unchanged on update.
type TourInput struct {
	Name          *string               `json:"name"`
	Duration      *int                  `json:"duration"`
	MaxGroupSize  *int                  `json:"maxGroupSize"`
	Difficulty    *string               `json:"difficulty"`
	Price         *float64              `json:"price"`
	PriceDiscount *float64              `json:"priceDiscount"`
	Summary       *string               `json:"summary"`
	Description   *string               `json:"description"`
	ImageCover    *string               `json:"imageCover"`
	Images        *[]string             `json:"images"`
	StartDates    *[]time.Time          `json:"startDates"`
	StartLocation *entity.GeoPoint      `json:"startLocation"`
	Locations     *[]entity.GeoPoint    `json:"locations"`
	Guides        *[]primitive.ObjectID `json:"guides"`
}

func (in TourInput) apply(t *entity.Tour) {
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
		t.Slug = entity.Slugify(t.Name)
	}
	if in.Duration != nil {
		t.Duration = *in.Duration
	}
	if in.MaxGroupSize != nil {
		t.MaxGroupSize = *in.MaxGroupSize
	}
	if in.Difficulty != nil {
		t.Difficulty = *in.Difficulty
	}
	if in.Price != nil {
		t.Price = *in.Price
	}
	if in.PriceDiscount != nil {
		t.PriceDiscount = *in.PriceDiscount
	}
	if in.Summary != nil {
		t.Summary = strings.TrimSpace(*in.Summary)
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.ImageCover != nil {
		t.ImageCover = *in.ImageCover
	}
	if in.Images != nil {
		t.Images = *in.Images
	}
	if in.StartDates != nil {
		t.StartDates = *in.StartDates
	}
	if in.StartLocation != nil {
		loc := *in.StartLocation
		t.StartLocation = &loc
	}
	if in.Locations != nil {
		t.Locations = *in.Locations
	}
	if in.Guides != nil {
		t.Guides = *in.Guides
	}
	normalizePoints(t)
}

func normalizePoints(t *entity.Tour) {
	if t.StartLocation != nil && t.StartLocation.Type == "" {
		t.StartLocation.Type = "Point"
	}
	for i := range t.Locations {
		if t.Locations[i].Type == "" {
			t.Locations[i].Type = "Point"
		}
	}
}

// TourUploads holds optional image files sent with a tour update.
type TourUploads struct {
	Cover  io.Reader
	Images []io.Reader
}

func (u TourUploads) empty() bool { return u.Cover == nil && len(u.Images) == 0 }

// WithinQuery is a parsed radius search.
type WithinQuery struct {
	Distance float64
	Lat      float64
	Lng      float64
	Unit     string
}

// Radius converts the distance into radians on the Earth's surface.
func (q WithinQuery) Radius() float64 {
	if q.Unit == "mi" {
		return q.Distance / EarthRadiusMiles
	}
	return q.Distance / EarthRadiusKm
}

// ParseWithin validates the path segments of a radius search:
// distance > 0, latlng as "lat,lng" and unit mi or km.
func ParseWithin(distance, latlng, unit string) (WithinQuery, error) {
	errs := map[string]string{}
	q := WithinQuery{Unit: unit}

	d, err := strconv.ParseFloat(distance, 64)
	if err != nil || d <= 0 {
		errs["distance"] = "must be a positive number"
	}
	q.Distance = d

	parts := strings.Split(latlng, ",")
	if len(parts) != 2 {
		errs["latlng"] = "must be in the format lat,lng"
	} else {
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		switch {
		case errLat != nil || errLng != nil:
			errs["latlng"] = "must be in the format lat,lng"
		case lat < -90 || lat > 90 || lng < -180 || lng > 180:
			errs["latlng"] = "is out of range"
		}
		q.Lat, q.Lng = lat, lng
	}

	if unit != "mi" && unit != "km" {
		errs["unit"] = "must be mi or km"
	}
	if len(errs) > 0 {
		return WithinQuery{}, apperror.Validation(validation.Message(errs), errs)
	}
	return q, nil
}

// ParseYear validates a monthly plan year.
func ParseYear(raw string) (int, error) {
	y, err := strconv.Atoi(raw)
	if err != nil || y < minPlanYear || y > maxPlanYear {
		return 0, apperror.Validation("Invalid year: "+raw, map[string]string{"year": "must be between 1970 and 9999"})
	}
	return y, nil
}

// TopCheapParams rewrites the query of the top-5-cheap alias.
func TopCheapParams(params url.Values) url.Values {
	out := url.Values{}
	for k, v := range params {
		out[k] = append([]string(nil), v...)
	}
	out.Set("limit", "5")
	out.Set("sort", "-ratingsAverage,price")
	out.Set("fields", "name,price,ratingsAverage,summary,difficulty")
	return out
}

type TourService struct {
	Repo   repo.TourRepository
	Search TourSearcher
	Images ImageStore
	Logger *logrus.Logger
}

func NewTourService(r repo.TourRepository, s TourSearcher, images ImageStore, logger *logrus.Logger) *TourService {
	return &TourService{Repo: r, Search: s, Images: images, Logger: logger}
}

func (s *TourService) List(ctx context.Context, params url.Values) ([]entity.Tour, error) {
	return s.Repo.List(ctx, params)
}

func (s *TourService) Get(ctx context.Context, id primitive.ObjectID) (*entity.Tour, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *TourService) Create(ctx context.Context, in TourInput) (*entity.Tour, error) {
	t := &entity.Tour{
		RatingsAverage: entity.DefaultRatingsAverage,
		Images:         []string{},
		StartDates:     []time.Time{},
	}
	in.apply(t)
	if err := validation.Struct(t); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.index(ctx, t)
	return t, nil
}

// Update merges in and the uploaded images into the stored tour and
// re-validates the whole document.
func (s *TourService) Update(ctx context.Context, id primitive.ObjectID, in TourInput, uploads TourUploads) (*entity.Tour, error) {
	t, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(t)
	if !uploads.empty() {
		if err := s.storeImages(ctx, t, uploads); err != nil {
			return nil, err
		}
	}
	if err := validation.Struct(t); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.index(ctx, t)
	return t, nil
}

func (s *TourService) storeImages(ctx context.Context, t *entity.Tour, uploads TourUploads) error {
	if s.Images == nil {
		return apperror.Validation("Image uploads are not enabled", map[string]string{"images": "uploads are disabled"})
	}
	id := t.ID.Hex()
	if uploads.Cover != nil {
		name, err := s.Images.SaveTourCover(ctx, id, uploads.Cover)
		if err != nil {
			return err
		}
		t.ImageCover = name
	}
	if len(uploads.Images) > 0 {
		names := make([]string, 0, len(uploads.Images))
		for i, r := range uploads.Images {
			name, err := s.Images.SaveTourImage(ctx, id, i+1, r)
			if err != nil {
				return err
			}
			names = append(names, name)
		}
		t.Images = names
	}
	return nil
}

func (s *TourService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.Search != nil {
		if err := s.Search.Delete(ctx, id.Hex()); err != nil {
			s.warn(err, id, "search delete failed")
		}
	}
	return nil
}

func (s *TourService) WithinRadius(ctx context.Context, q WithinQuery) ([]entity.Tour, error) {
	return s.Repo.WithinRadius(ctx, q.Lng, q.Lat, q.Radius())
}

func (s *TourService) Statistics(ctx context.Context) ([]entity.TourStatistic, error) {
	return s.Repo.Statistics(ctx)
}

func (s *TourService) MonthlyPlan(ctx context.Context, year int) ([]entity.MonthlyPlan, error) {
	return s.Repo.MonthlyPlan(ctx, year)
}

func (s *TourService) SearchTours(ctx context.Context, q string, size int) ([]search.TourHit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("Please provide a search term", map[string]string{"q": "is required"})
	}
	if s.Search == nil {
		return nil, apperror.Upstream("Search is not configured", nil)
	}
	return s.Search.Search(ctx, q, size)
}

// index keeps the search copy in sync. The store write already succeeded,
// so failures are only logged.
func (s *TourService) index(ctx context.Context, t *entity.Tour) {
	if s.Search == nil {
		return
	}
	if err := s.Search.Index(ctx, t); err != nil {
		s.warn(err, t.ID, "search index failed")
	}
}

func (s *TourService) warn(err error, id primitive.ObjectID, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("tour_id", id.Hex()).Warn(msg)
	}
}
