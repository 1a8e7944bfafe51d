package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/delordemm1/agency-portfolio-api/internal/metrics"
	"github.com/delordemm1/agency-portfolio-api/internal/notification"
)

// Service defines the interface for the user module's business logic.
// It orchestrates the flow of data between the handlers and the repository,
// and contains the core business rules.
type Service interface {
	// Credentials
	Signup(ctx context.Context, in SignupInput) (*User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	GoogleLogin(ctx context.Context, idToken string, phone *string) (*Session, error)

	// Email verification
	VerifyEmail(ctx context.Context, token string) (*Session, error)
	ResendVerification(ctx context.Context, email string) error

	// Password reset
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error

	// Authorize resolves a bearer token against the requirement of an operation.
	Authorize(ctx context.Context, bearer string, req Requirement) Decision

	// Profile
	GetProfile(ctx context.Context, userID int64) (*User, error)
	UpdateProfile(ctx context.Context, userID int64, in ProfileChanges) (*User, error)

	// Administration
	ListUsers(ctx context.Context, skip, limit int) ([]User, int, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	AdminUpdateUser(ctx context.Context, id int64, in AdminChanges) (*User, error)
	ToggleBlock(ctx context.Context, actorID, id int64) (*User, error)
	DeleteUser(ctx context.Context, actorID, id int64) error
	Broadcast(ctx context.Context, in BroadcastInput) (int, error)
}

// Settings are the tunables of the account flows.
type Settings struct {
	FrontendURL    string
	GoogleClientID string
	// AccountFrom is the sender of verification and reset emails.
	AccountFrom  string
	OTPTTL       time.Duration
	ReplayWindow time.Duration
}

// service implements the Service interface.
type service struct {
	repo     Repository
	logger   *slog.Logger
	hasher   PasswordHasher
	tokens   *TokenIssuer
	identity IdentityVerifier
	notifier notification.Service
	metrics  *metrics.Recorder
	settings Settings
	now      func() time.Time
}

// Config holds the dependencies for the user service.
type Config struct {
	Repo     Repository
	Logger   *slog.Logger
	Hasher   PasswordHasher
	Tokens   *TokenIssuer
	Identity IdentityVerifier
	Notifier notification.Service
	Metrics  *metrics.Recorder
	Settings Settings
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// NewService creates a new user service with the given dependencies.
func NewService(cfg *Config) Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = NewBcryptHasher()
	}
	return &service{
		repo:     cfg.Repo,
		logger:   cfg.Logger,
		hasher:   hasher,
		tokens:   cfg.Tokens,
		identity: cfg.Identity,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		settings: cfg.Settings,
		now:      now,
	}
}

func (s *service) session(u *User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, User: u}, nil
}

// gate applies the status rules shared by password and federated login.
func gate(u *User) error {
	switch u.Status {
	case StatusPending:
		return ErrNotVerified
	case StatusBlocked:
		return ErrBlocked
	}
	return nil
}
