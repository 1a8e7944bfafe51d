package notification

import (
	"context"
	"log/slog"
)

// LogSender writes notifications to the log instead of delivering them. Used in development.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender { return &LogSender{log: log} }

func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.log.Info("mail (log provider)",
		"id", n.ID,
		"from", n.From,
		"to", n.To,
		"subject", n.Subject,
		"text", n.TextBody,
	)
	return nil
}
