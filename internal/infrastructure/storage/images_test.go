package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

type fakeUploader struct {
	paths []string
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, path, contentType string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if contentType != "image/jpeg" {
		return "", errors.New("unexpected content type")
	}
	_, _ = io.Copy(io.Discard, r)
	f.paths = append(f.paths, path)
	return "https://storage.example/" + path, nil
}

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestResizeFillsFrame(t *testing.T) {
	out, err := Resize(pngOf(t, 800, 300), 500, 500)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 500, 500), img.Bounds())
}

func TestResizeRejectsNonImages(t *testing.T) {
	_, err := Resize(strings.NewReader("definitely not a picture"), 10, 10)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestSaveUserPhotoNamesAndPrefixes(t *testing.T) {
	up := &fakeUploader{}
	imgs := NewImages(up)
	imgs.now = func() time.Time { return time.Unix(1700000000, 0) }

	name, err := imgs.SaveUserPhoto(context.Background(), "abc", pngOf(t, 50, 50))
	require.NoError(t, err)
	assert.Equal(t, "user-abc-1700000000.jpeg", name)
	assert.Equal(t, []string{"img/users/user-abc-1700000000.jpeg"}, up.paths)

	name, err = imgs.SaveTourImage(context.Background(), "t1", 2, pngOf(t, 50, 50))
	require.NoError(t, err)
	assert.Equal(t, "tour-t1-1700000000-2.jpeg", name)
}

func TestUploadFailureIsUpstream(t *testing.T) {
	imgs := NewImages(&fakeUploader{err: errors.New("bucket gone")})
	_, err := imgs.SaveTourCover(context.Background(), "t1", pngOf(t, 20, 20))
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
}
