package user

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/delordemm1/agency-portfolio-api/internal/notification"
	"github.com/delordemm1/agency-portfolio-api/internal/notification/templates"
)

// SignupInput carries the fields of a self-service registration.
type SignupInput struct {
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
	Password    string
}

// Signup creates a pending account and queues the verification email.
// A queueing failure is logged and does not undo the account.
func (s *service) Signup(ctx context.Context, in SignupInput) (*User, error) {
	if err := s.ensureUnique(ctx, 0, in.Email, in.PhoneNumber); err != nil {
		s.metrics.AuthEvent("signup", "duplicate")
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	token, err := generateSecureToken(32)
	if err != nil {
		return nil, err
	}
	tokenHash := hashToken(token)

	u := &User{
		Email:             in.Email,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		PhoneNumber:       optional(in.PhoneNumber),
		PasswordHash:      &hash,
		Status:            StatusPending,
		VerificationToken: &tokenHash,
	}
	if err := s.repo.WithTx(ctx, func(tx Repository) error {
		return tx.Create(ctx, u)
	}); err != nil {
		return nil, err
	}
	s.metrics.AuthEvent("signup", "success")
	s.logger.Info("user signed up", "user_id", u.ID)

	if err := s.sendVerification(ctx, u, token); err != nil {
		s.logger.Error("failed to queue verification email", "user_id", u.ID, "error", err)
	}
	return u, nil
}

// Login verifies the password first and only then reveals the account status.
func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.AuthEvent("login", "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == nil || !s.hasher.Verify(password, *u.PasswordHash) {
		s.metrics.AuthEvent("login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	if err := gate(u); err != nil {
		s.metrics.AuthEvent("login", string(u.Status))
		return nil, err
	}

	s.metrics.AuthEvent("login", "success")
	return s.session(u)
}

// GoogleLogin signs in with a Google ID token, provisioning an active account on first use.
func (s *service) GoogleLogin(ctx context.Context, idToken string, phone *string) (*Session, error) {
	id, err := s.identity.Verify(ctx, idToken, s.settings.GoogleClientID)
	if err != nil {
		s.metrics.AuthEvent("google", "invalid_assertion")
		s.logger.Warn("google id token rejected", "error", err)
		return nil, ErrInvalidAssertion.WithCause(err)
	}
	if id.Email == "" || !id.EmailVerified {
		s.metrics.AuthEvent("google", "invalid_assertion")
		return nil, ErrInvalidAssertion.WithDetail("Google account email is not verified")
	}

	u, err := s.repo.FindByEmail(ctx, id.Email)
	switch {
	case err == nil:
		if err := gate(u); err != nil {
			s.metrics.AuthEvent("google", string(u.Status))
			return nil, err
		}
	case errors.Is(err, ErrNotFound):
		if u, err = s.provisionFederated(ctx, id, phone); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.metrics.AuthEvent("google", "success")
	return s.session(u)
}

func (s *service) provisionFederated(ctx context.Context, id *Identity, phone *string) (*User, error) {
	p := ""
	if phone != nil {
		p = strings.TrimSpace(*phone)
	}
	if err := s.ensureUnique(ctx, 0, "", p); err != nil {
		return nil, err
	}

	// A random secret nobody knows keeps password login impossible for this account.
	secret, err := generateSecureToken(32)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, err
	}

	firstName := id.GivenName
	if firstName == "" {
		firstName, _, _ = strings.Cut(id.Email, "@")
	}
	u := &User{
		Email:        id.Email,
		FirstName:    firstName,
		LastName:     id.FamilyName,
		PhoneNumber:  optional(p),
		PasswordHash: &hash,
		Status:       StatusActive,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("provisioned account from google sign-in", "user_id", u.ID)
	return u, nil
}

// ensureUnique rejects an email or phone already held by an account other than selfID.
// Empty values are not checked.
func (s *service) ensureUnique(ctx context.Context, selfID int64, email, phone string) error {
	if email != "" {
		existing, err := s.repo.FindByEmail(ctx, email)
		if err == nil && existing.ID != selfID {
			return ErrDuplicateEmail
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	if phone != "" {
		existing, err := s.repo.FindByPhone(ctx, phone)
		if err == nil && existing.ID != selfID {
			return ErrDuplicatePhone
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

func (s *service) sendVerification(ctx context.Context, u *User, token string) error {
	link := strings.TrimRight(s.settings.FrontendURL, "/") + "/verify-email?token=" + url.QueryEscape(token)
	return notification.SendTemplate(ctx, s.notifier, templates.VerifyEmail, s.settings.AccountFrom,
		[]string{u.Email}, templates.VerifyEmailData{FirstName: u.FirstName, VerificationURL: link})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
