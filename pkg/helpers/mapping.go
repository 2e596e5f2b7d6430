package helpers

import (
	"fmt"

	"github.com/oksasatya/tour-booking-api/pkg/mailer"
	mailtpl "github.com/oksasatya/tour-booking-api/pkg/mailer/templates"
)

// SubjectFor is the fallback subject when a job carries neither a subject nor
// a subject template.
func SubjectFor(template string) string {
	switch template {
	case mailtpl.Welcome:
		return "Welcome to the family!"
	case mailtpl.PasswordReset:
		return "Your password reset token (valid for 10 min)"
	case mailtpl.BookingConfirmed:
		return "Your tour is booked"
	default:
		return "Notification"
	}
}

// EnsureRecipient copies the recipient into Data so templates can address it.
func EnsureRecipient(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
}
