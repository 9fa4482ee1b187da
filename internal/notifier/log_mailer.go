package notifier

import (
	"context"
	"order-payment-engine/internal/client"

	"github.com/sirupsen/logrus"
)

// LogMailer writes emails to the log instead of a provider. Used when no
// MAIL_API_KEY is configured.
type LogMailer struct {
	Log logrus.FieldLogger
}

func (m LogMailer) Send(_ context.Context, email client.Email) error {
	m.Log.WithFields(logrus.Fields{
		"to":      email.To,
		"subject": email.Subject,
	}).Info("email (not sent, no mail provider configured)")
	return nil
}
