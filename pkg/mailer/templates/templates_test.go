package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEveryTemplate(t *testing.T) {
	brand := Brand{CompanyName: "Natours"}
	cases := map[string]map[string]any{
		Welcome:          NewData(brand, "Leo Gillespie", "leo@example.com", WithURL("http://x/me")),
		PasswordReset:    NewData(brand, "Leo Gillespie", "leo@example.com", WithURL("http://x/reset/abc"), WithExpiresIn(0)),
		BookingConfirmed: NewData(brand, "Leo Gillespie", "leo@example.com", WithBooking("The Forest Hiker", 397), WithURL("http://x/my")),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			subject, text, html, err := Render(name, data)
			require.NoError(t, err)
			assert.NotEmpty(t, subject)
			assert.Contains(t, text, "Leo")
			assert.Contains(t, html, "<p>Hi Leo,</p>")
		})
	}
}

func TestBookingTemplateFormatsPrice(t *testing.T) {
	data := NewData(Brand{}, "Ann", "a@b.io", WithBooking("The Sea Explorer", 497))
	subject, text, _, err := Render(BookingConfirmed, data)
	require.NoError(t, err)
	assert.Equal(t, "Your tour The Sea Explorer is booked", subject)
	assert.Contains(t, text, "$497.00")
}
