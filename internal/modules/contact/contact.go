// Package contact forwards messages from the public contact form to the agency mailbox.
package contact

import (
	"context"
	"log/slog"
	"strings"

	"github.com/delordemm1/agency-portfolio-api/internal/notification"
	"github.com/delordemm1/agency-portfolio-api/internal/notification/templates"
)

type Message struct {
	Name    string
	Email   string
	Message string
}

type Service interface {
	Submit(ctx context.Context, m Message) error
}

type service struct {
	notifier notification.Service
	logger   *slog.Logger
	to       string
}

// NewService returns a Service delivering submissions to the mailbox at to.
func NewService(notifier notification.Service, to string, logger *slog.Logger) Service {
	return &service{notifier: notifier, logger: logger, to: to}
}

func (s *service) Submit(ctx context.Context, m Message) error {
	data := templates.ContactSubmissionData{
		Name:    strings.TrimSpace(m.Name),
		Email:   strings.TrimSpace(m.Email),
		Message: m.Message,
	}
	if err := notification.SendTemplate(ctx, s.notifier, templates.ContactSubmission, "", []string{s.to}, data); err != nil {
		return err
	}
	s.logger.Info("contact message queued", "from", data.Email)
	return nil
}
