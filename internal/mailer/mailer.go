// Package mailer sends transactional email through Resend. Delivery is always
// best-effort: callers log failures and never propagate them.
package mailer

import (
	"context"

	"github.com/resend/resend-go/v2"
)

// Message is one transactional email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResendSender sends email via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string // RFC 5322 sender, e.g. "Dětské trhy <onboarding@resend.dev>"
}

// NewResendSender creates a Resend-backed sender.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send delivers one email.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	return err
}
