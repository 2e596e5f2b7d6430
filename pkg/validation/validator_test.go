package validation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/tour-booking-api/pkg/apperror"
)

type sample struct {
	Name          string  `json:"name" validate:"required,min=10,max=40"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	PriceDiscount float64 `json:"priceDiscount" validate:"omitempty,ltfield=Price"`
	Difficulty    string  `json:"difficulty" validate:"required,oneof=easy medium difficult"`
	Rating        int     `json:"rating" validate:"min=1,max=5"`
}

func TestStructAggregatesEveryField(t *testing.T) {
	err := Struct(sample{Name: "short", Price: 100, PriceDiscount: 200, Difficulty: "hard", Rating: 6})
	require.Error(t, err)

	ae := apperror.As(err)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Equal(t, map[string]string{
		"name":          "must be at least 10 characters long",
		"priceDiscount": "must be below price",
		"difficulty":    "must be one of: easy, medium, difficult",
		"rating":        "must be at most 5",
	}, ae.Fields)
	assert.True(t, strings.HasPrefix(ae.Message, "Invalid input data. difficulty must be one of"))
}

func TestStructAcceptsValid(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "The Forest Hiker", Price: 397, Difficulty: "easy", Rating: 5}))
}

func TestFromErrorClassifiesDecodeErrors(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	dec := json.NewDecoder(strings.NewReader(`{"name":"x","role":"admin"}`))
	dec.DisallowUnknownFields()
	err := FromError(dec.Decode(&dst))
	assert.Equal(t, map[string]string{"role": "is not an allowed field"}, apperror.As(err).Fields)

	err = FromError(json.Unmarshal([]byte(`{"name":`), &dst))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	err = FromError(&http.MaxBytesError{Limit: 10240})
	assert.Equal(t, apperror.KindPayloadTooLarge, apperror.KindOf(err))

	nf := apperror.NotFound("x")
	assert.True(t, errors.Is(FromError(nf), nf))
}
