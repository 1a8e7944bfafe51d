// Package notification renders transactional emails and hands them to an outbox
// that a worker pool delivers through the configured mail provider.
package notification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/delordemm1/agency-portfolio-api/internal/domainerr"
	"github.com/delordemm1/agency-portfolio-api/internal/notification/templates"
)

// Notification is one outbound email as stored in the outbox.
type Notification struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	To         []string  `json:"to"`
	Subject    string    `json:"subject"`
	HTMLBody   string    `json:"html_body,omitempty"`
	TextBody   string    `json:"text_body,omitempty"`
	Template   string    `json:"template,omitempty"`
	Attempts   int       `json:"attempts"`
	LastError  string    `json:"last_error,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`

	// receipt is the raw payload a worker took off the outbox.
	receipt string
}

// Sender delivers a notification through a mail provider.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Queue accepts notifications for later delivery.
type Queue interface {
	Enqueue(ctx context.Context, n Notification) error
}

// ErrPermanent marks a delivery failure that retrying cannot fix (rejected recipient, bad request).
var ErrPermanent = errors.New("permanent delivery failure")

var errNoRecipients = errors.New("notification has no recipients")

// Service is the entry point used by domain modules.
type Service interface {
	// Send enqueues n. Failures are reported as domainerr.ErrProviderUnavailable.
	Send(ctx context.Context, n Notification) error
	Templates() *templates.Engine
}

type service struct {
	log    *slog.Logger
	queue  Queue
	engine *templates.Engine
	from   string
	now    func() time.Time
}

// NewService creates a notification service. from is used when a notification has no sender address.
func NewService(log *slog.Logger, queue Queue, engine *templates.Engine, from string) Service {
	return &service{
		log:    log,
		queue:  queue,
		engine: engine,
		from:   from,
		now:    time.Now,
	}
}

func (s *service) Templates() *templates.Engine { return s.engine }

func (s *service) Send(ctx context.Context, n Notification) error {
	if len(n.To) == 0 {
		return errNoRecipients
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.From == "" {
		n.From = s.from
	}
	n.EnqueuedAt = s.now().UTC()

	if err := s.queue.Enqueue(ctx, n); err != nil {
		s.log.Error("failed to enqueue notification", "id", n.ID, "template", n.Template, "error", err)
		return domainerr.ErrProviderUnavailable.WithCause(err)
	}
	s.log.Info("notification queued", "id", n.ID, "template", n.Template, "recipients", len(n.To))
	return nil
}

// SendTemplate renders the scenario behind h and enqueues it.
// An empty from falls back to the service default.
func SendTemplate[T any](ctx context.Context, svc Service, h templates.Handle[T], from string, to []string, data T) error {
	r, err := templates.Render(svc.Templates(), h, data)
	if err != nil {
		return domainerr.ErrInternal.WithCause(err)
	}
	return svc.Send(ctx, Notification{
		From:     from,
		To:       to,
		Subject:  r.Subject,
		HTMLBody: r.EmailHTML,
		TextBody: r.EmailText,
		Template: h.ID(),
	})
}
