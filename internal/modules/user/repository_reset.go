package user

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// --- Password reset OTPs ---

func (r *repository) CreatePasswordReset(ctx context.Context, pr *PasswordReset) error {
	if pr.CreatedAt.IsZero() {
		pr.CreatedAt = time.Now().UTC()
	}
	query, args, err := r.psql.Insert("password_resets").
		Columns("user_id", "otp_hash", "expires_at", "created_at").
		Values(pr.UserID, pr.OTPHash, pr.ExpiresAt, pr.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, query, args...).Scan(&pr.ID)
}

// FindPasswordReset returns the newest row for the user and code. Expiry is checked by the caller
// against its own clock.
func (r *repository) FindPasswordReset(ctx context.Context, userID int64, otpHash string) (*PasswordReset, error) {
	query, args, err := r.psql.Select("id", "user_id", "otp_hash", "attempts", "expires_at", "created_at").
		From("password_resets").
		Where(squirrel.Eq{"user_id": userID, "otp_hash": otpHash}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}
	var pr PasswordReset
	if err := pgxscan.Get(ctx, r.db, &pr, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrInvalidOrExpiredOtp.WithCause(err)
		}
		return nil, err
	}
	return &pr, nil
}

// DeletePasswordReset consumes a row. It fails with ErrInvalidOrExpiredOtp when the row is already gone.
func (r *repository) DeletePasswordReset(ctx context.Context, id int64) error {
	query, args, err := r.psql.Delete("password_resets").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrInvalidOrExpiredOtp
	}
	return nil
}

func (r *repository) DeletePasswordResetsByUser(ctx context.Context, userID int64) error {
	query, args, err := r.psql.Delete("password_resets").Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) RecordFailedReset(ctx context.Context, userID int64, maxAttempts int) error {
	query, args, err := r.psql.Update("password_resets").
		Set("attempts", squirrel.Expr("attempts + 1")).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return err
	}

	query, args, err = r.psql.Delete("password_resets").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"attempts": maxAttempts}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}
