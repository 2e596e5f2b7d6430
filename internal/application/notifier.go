package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tour-booking-api/pkg/apperror"
	"github.com/oksasatya/tour-booking-api/pkg/mailer"
	tpl "github.com/oksasatya/tour-booking-api/pkg/mailer/templates"
)

// Notifier queues templated emails on the job queue.
type Notifier struct {
	Pub     JobPublisher
	Brand   tpl.Brand
	Enabled bool
	Logger  *logrus.Logger
}

func NewNotifier(pub JobPublisher, brand tpl.Brand, enabled bool, logger *logrus.Logger) *Notifier {
	return &Notifier{Pub: pub, Brand: brand, Enabled: enabled, Logger: logger}
}

// Send publishes template for the recipient. A disabled notifier queues
// nothing and reports no error.
func (n *Notifier) Send(ctx context.Context, template, name, email string, opts ...tpl.Option) error {
	if n == nil || !n.Enabled || n.Pub == nil || email == "" {
		return nil
	}
	job := mailer.EmailJob{
		To:       email,
		Template: template,
		Data:     tpl.NewData(n.Brand, name, email, opts...),
	}
	if err := n.Pub.PublishJSON(ctx, job); err != nil {
		if n.Logger != nil {
			n.Logger.WithError(err).WithField("template", template).Warn("failed to publish email job")
		}
		return apperror.Upstream("publish email job", err)
	}
	return nil
}
