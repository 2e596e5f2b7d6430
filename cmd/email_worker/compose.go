package main

import (
	"errors"

	"github.com/oksasatya/tour-booking-api/pkg/helpers"
	"github.com/oksasatya/tour-booking-api/pkg/mailer"
	mailtpl "github.com/oksasatya/tour-booking-api/pkg/mailer/templates"
)

var errNoRecipient = errors.New("email job has no recipient")

// compose resolves the subject and bodies of job. Template jobs are rendered
// from Data; raw jobs keep their own content.
func compose(job *mailer.EmailJob) (subject, text, html string, err error) {
	if job.To == "" {
		return "", "", "", errNoRecipient
	}
	helpers.EnsureRecipient(job)
	if job.Template == "" {
		subject = job.Subject
		if subject == "" {
			subject = helpers.SubjectFor("")
		}
		return subject, job.Text, job.HTML, nil
	}
	subject, text, html, err = mailtpl.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", err
	}
	if subject == "" {
		subject = helpers.SubjectFor(job.Template)
	}
	return subject, text, html, nil
}
