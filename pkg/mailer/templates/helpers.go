package templates

import (
	"encoding/json"
	"time"
)

// Brand carries the sender identity shared by every email.
type Brand struct {
	CompanyName string
	SupportURL  string
}

// EmailData is the template model. Fields unused by a template stay empty.
type EmailData struct {
	Name        string `json:"Name"`
	Email       string `json:"Email"`
	CompanyName string `json:"CompanyName"`
	SupportURL  string `json:"SupportURL"`

	URL           string `json:"URL"`
	ExpiresAtText string `json:"ExpiresAtText"`

	TourName string  `json:"TourName"`
	Price    float64 `json:"Price"`
}

// Option pattern
type Option func(*EmailData)

func WithURL(url string) Option { return func(d *EmailData) { d.URL = url } }

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		d.ExpiresAtText = time.Now().Add(dur).UTC().Format("02 January 2006, 15:04 MST")
	}
}

func WithBooking(tourName string, price float64) Option {
	return func(d *EmailData) {
		d.TourName = tourName
		d.Price = price
	}
}

// NewData fills the common fields and applies opts.
func NewData(b Brand, name, email string, opts ...Option) map[string]any {
	d := EmailData{
		Name:        name,
		Email:       email,
		CompanyName: b.CompanyName,
		SupportURL:  b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}
