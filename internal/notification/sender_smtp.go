package notification

import (
	"context"
	"fmt"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"
)

// SMTPSender sends through an SMTP relay with STARTTLS.
type SMTPSender struct {
	server *mail.SMTPServer
}

func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	server := mail.NewSMTPClient()
	server.Host = host
	server.Port = port
	server.Username = username
	server.Password = password
	server.Encryption = mail.EncryptionSTARTTLS
	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second
	return &SMTPSender{server: server}
}

func (s *SMTPSender) Send(ctx context.Context, n Notification) error {
	email, err := buildMessage(n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}

	client, err := s.server.Connect()
	if err != nil {
		return fmt.Errorf("connect to smtp server: %w", err)
	}
	defer client.Close()

	if err := email.Send(client); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// buildMessage assembles a multipart message with the HTML body and a plain text alternative.
func buildMessage(n Notification) (*mail.Email, error) {
	email := mail.NewMSG()
	email.SetFrom(n.From).AddTo(n.To...).SetSubject(n.Subject)
	switch {
	case n.HTMLBody != "":
		email.SetBody(mail.TextHTML, n.HTMLBody)
		if n.TextBody != "" {
			email.AddAlternative(mail.TextPlain, n.TextBody)
		}
	default:
		email.SetBody(mail.TextPlain, n.TextBody)
	}
	if email.Error != nil {
		return nil, email.Error
	}
	return email, nil
}
