package user

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/delordemm1/agency-portfolio-api/internal/database"
)

// Repository defines the interface for database operations for the user module.
// This abstraction allows the service layer to be independent of the database implementation.
type Repository interface {
	// WithTx runs fn against a repository bound to one transaction.
	WithTx(ctx context.Context, fn func(Repository) error) error

	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	// FindByVerificationToken matches either the outstanding token or the one that activated the account.
	FindByVerificationToken(ctx context.Context, tokenHash string) (*User, error)
	// The writes below touch only their own columns and fail with ErrNotFound when no row matches.
	UpdateProfile(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	SetStatus(ctx context.Context, id int64, from, to Status) error
	Activate(ctx context.Context, id int64, tokenHash string, at time.Time) error
	SetVerificationToken(ctx context.Context, id int64, tokenHash string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, skip, limit int) ([]User, int, error)
	ListAll(ctx context.Context) ([]User, error)

	CreatePasswordReset(ctx context.Context, pr *PasswordReset) error
	FindPasswordReset(ctx context.Context, userID int64, otpHash string) (*PasswordReset, error)
	DeletePasswordReset(ctx context.Context, id int64) error
	DeletePasswordResetsByUser(ctx context.Context, userID int64) error
	// RecordFailedReset counts a wrong code against the user's outstanding codes and drops the
	// codes that reached maxAttempts.
	RecordFailedReset(ctx context.Context, userID int64, maxAttempts int) error
}

// repository implements the Repository interface using pgx and squirrel.
type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new user repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *repository) WithTx(ctx context.Context, fn func(Repository) error) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&repository{db: tx, psql: r.psql})
	})
}
