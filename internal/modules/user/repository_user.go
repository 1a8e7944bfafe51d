package user

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/delordemm1/agency-portfolio-api/internal/database"
)

var userColumns = []string{
	"id", "email", "first_name", "last_name", "phone_number", "password_hash", "is_admin", "status",
	"verification_token", "verified_token_hash", "verified_at", "created_at", "updated_at",
}

// Create inserts a new user record and fills in the generated id and timestamps.
func (r *repository) Create(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := r.psql.Insert("users").
		Columns("email", "first_name", "last_name", "phone_number", "password_hash", "is_admin", "status",
			"verification_token", "verified_token_hash", "verified_at", "created_at", "updated_at").
		Values(user.Email, user.FirstName, user.LastName, user.PhoneNumber, user.PasswordHash, user.IsAdmin, user.Status,
			user.VerificationToken, user.VerifiedTokenHash, user.VerifiedAt, user.CreatedAt, user.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&user.ID); err != nil {
		return mapWriteError(err)
	}
	return nil
}

// FindByID retrieves a user by their unique ID.
// It returns ErrNotFound if no user is found.
func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

// FindByEmail retrieves a user by their email address.
// It returns ErrNotFound if no user is found.
func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"email": email})
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"phone_number": phone})
}

func (r *repository) FindByVerificationToken(ctx context.Context, tokenHash string) (*User, error) {
	return r.findOne(ctx, squirrel.Or{
		squirrel.Eq{"verification_token": tokenHash},
		squirrel.Eq{"verified_token_hash": tokenHash},
	})
}

// UpdateProfile writes the contact columns of user. Credentials and status are left alone so a
// concurrent block or password change survives.
func (r *repository) UpdateProfile(ctx context.Context, user *User) error {
	user.UpdatedAt = time.Now().UTC()
	return r.execUpdate(ctx, r.psql.Update("users").
		Set("email", user.Email).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("phone_number", user.PhoneNumber).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID}))
}

func (r *repository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.execUpdate(ctx, r.psql.Update("users").
		Set("password_hash", hash).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}))
}

// SetStatus moves an account from one status to another. It fails with ErrNotFound when the
// account is gone or no longer in status from.
func (r *repository) SetStatus(ctx context.Context, id int64, from, to Status) error {
	return r.execUpdate(ctx, r.psql.Update("users").
		Set("status", to).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": from}))
}

// Activate marks a pending account verified, provided tokenHash is still its outstanding token.
func (r *repository) Activate(ctx context.Context, id int64, tokenHash string, at time.Time) error {
	return r.execUpdate(ctx, r.psql.Update("users").
		Set("status", StatusActive).
		Set("verification_token", nil).
		Set("verified_token_hash", tokenHash).
		Set("verified_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": StatusPending, "verification_token": tokenHash}))
}

// SetVerificationToken replaces the outstanding token of an account that is still pending.
func (r *repository) SetVerificationToken(ctx context.Context, id int64, tokenHash string) error {
	return r.execUpdate(ctx, r.psql.Update("users").
		Set("verification_token", tokenHash).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": StatusPending}))
}

func (r *repository) execUpdate(ctx context.Context, b squirrel.UpdateBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteError(err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.psql.Delete("users").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of users ordered by id together with the total count.
func (r *repository) List(ctx context.Context, skip, limit int) ([]User, int, error) {
	countQuery, countArgs, err := r.psql.Select("COUNT(*)").From("users").ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := r.psql.Select(userColumns...).From("users").
		OrderBy("id").
		Offset(uint64(skip)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	users := []User{}
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *repository) ListAll(ctx context.Context) ([]User, error) {
	query, args, err := r.psql.Select(userColumns...).From("users").OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	users := []User{}
	if err := pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}

// findOne is a helper method to find a single user by a given condition.
func (r *repository) findOne(ctx context.Context, condition squirrel.Sqlizer) (*User, error) {
	query, args, err := r.psql.Select(userColumns...).From("users").Where(condition).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	if err := pgxscan.Get(ctx, r.db, &user, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &user, nil
}

// mapWriteError turns unique violations into the matching duplicate error.
func mapWriteError(err error) error {
	constraint, ok := database.IsUniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case "users_email_key":
		return ErrDuplicateEmail.WithCause(err)
	case "users_phone_number_key":
		return ErrDuplicatePhone.WithCause(err)
	}
	return err
}
