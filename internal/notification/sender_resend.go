package notification

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, n Notification) error {
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.From,
		To:      n.To,
		Subject: n.Subject,
		Html:    n.HTMLBody,
		Text:    n.TextBody,
	})
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}
	return nil
}
