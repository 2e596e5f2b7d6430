// Package storage resizes uploaded images and stores them in Google Cloud
// Storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/disintegration/imaging"

	"github.com/oksasatya/tour-booking-api/pkg/apperror"
	"github.com/oksasatya/tour-booking-api/pkg/helpers"
)

const (
	userPhotoSize = 500
	tourWidth     = 2000
	tourHeight    = 1333
	jpegQuality   = 90

	userPrefix = "img/users/"
	tourPrefix = "img/tours/"
)

// Uploader writes an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error)
}

// GCSUploader uploads into one bucket.
type GCSUploader struct {
	client *gcs.Client
	bucket string
}

func NewGCSUploader(client *gcs.Client, bucket string) *GCSUploader {
	return &GCSUploader{client: client, bucket: bucket}
}

func (u *GCSUploader) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, u.client, u.bucket, path, contentType, r)
}

// Images turns uploads into stored JPEG files and returns their file names.
type Images struct {
	up  Uploader
	now func() time.Time
}

func NewImages(up Uploader) *Images {
	return &Images{up: up, now: time.Now}
}

// SaveUserPhoto crops the photo to a 500x500 square and stores it as
// user-<id>-<unix>.jpeg.
func (s *Images) SaveUserPhoto(ctx context.Context, userID string, r io.Reader) (string, error) {
	name := fmt.Sprintf("user-%s-%d.jpeg", userID, s.now().Unix())
	return name, s.store(ctx, userPrefix+name, r, userPhotoSize, userPhotoSize)
}

// SaveTourCover stores the cover image as tour-<id>-<unix>-cover.jpeg.
func (s *Images) SaveTourCover(ctx context.Context, tourID string, r io.Reader) (string, error) {
	name := fmt.Sprintf("tour-%s-%d-cover.jpeg", tourID, s.now().Unix())
	return name, s.store(ctx, tourPrefix+name, r, tourWidth, tourHeight)
}

// SaveTourImage stores the n-th gallery image (1-based).
func (s *Images) SaveTourImage(ctx context.Context, tourID string, n int, r io.Reader) (string, error) {
	name := fmt.Sprintf("tour-%s-%d-%d.jpeg", tourID, s.now().Unix(), n)
	return name, s.store(ctx, tourPrefix+name, r, tourWidth, tourHeight)
}

func (s *Images) store(ctx context.Context, path string, r io.Reader, w, h int) error {
	b, err := Resize(r, w, h)
	if err != nil {
		return err
	}
	if _, err := s.up.Upload(ctx, path, "image/jpeg", bytes.NewReader(b)); err != nil {
		return apperror.Upstream("Image upload failed", err)
	}
	return nil
}

// Resize decodes any supported image, fills a w x h frame around the centre
// and encodes it as JPEG.
func Resize(r io.Reader, w, h int) ([]byte, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperror.Validation("Not an image! Please upload only images.", map[string]string{"image": "is not a supported image"})
	}
	return encode(imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos))
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, apperror.Internal("encode image", err)
	}
	return buf.Bytes(), nil
}
