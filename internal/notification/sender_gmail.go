package notification

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GmailSender sends through the Gmail API as the account that granted the refresh token.
type GmailSender struct {
	svc *gmail.Service
}

// NewGmailSender builds the API client over a mutex-guarded token cache that refreshes
// the access token on expiry. Concurrent callers share one refresh.
func NewGmailSender(ctx context.Context, clientID, clientSecret, refreshToken string, log *slog.Logger) (*GmailSender, error) {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	base := &loggingTokenSource{
		src: conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}),
		log: log,
	}
	ts := oauth2.ReuseTokenSource(nil, base)

	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &GmailSender{svc: svc}, nil
}

func (s *GmailSender) Send(ctx context.Context, n Notification) error {
	email, err := buildMessage(n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	raw := base64.URLEncoding.EncodeToString([]byte(email.GetMessage()))

	_, err = s.svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
		return fmt.Errorf("%w: gmail: %v", ErrPermanent, err)
	}
	return fmt.Errorf("gmail send: %w", err)
}

type loggingTokenSource struct {
	src oauth2.TokenSource
	log *slog.Logger
}

func (l *loggingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := l.src.Token()
	if err != nil {
		l.log.Warn("gmail token refresh failed", "error", err)
		return nil, err
	}
	l.log.Debug("gmail access token refreshed", "expiry", tok.Expiry)
	return tok, nil
}
