package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/delordemm1/agency-portfolio-api/internal/config"
)

// NewSender builds the provider selected by MAIL_PROVIDER, wrapped in a circuit breaker.
func NewSender(ctx context.Context, cfg *config.Config, log *slog.Logger) (Sender, error) {
	var (
		s   Sender
		err error
	)
	switch cfg.Mail.Provider {
	case "smtp":
		s = NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	case "ses":
		s, err = NewSESSender(ctx, cfg.SES.Region, cfg.SES.AccessKeyID, cfg.SES.SecretAccessKey)
	case "resend":
		s = NewResendSender(cfg.Resend.APIKey)
	case "gmail":
		s, err = NewGmailSender(ctx, cfg.Gmail.ClientID, cfg.Gmail.ClientSecret, cfg.Gmail.RefreshToken, log)
	case "log":
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewBreakerSender(s, cfg.Mail.Provider, BreakerConfig{}, log), nil
}
