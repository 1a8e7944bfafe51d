package user

import (
	"context"
	"errors"

	"github.com/delordemm1/agency-portfolio-api/internal/notification"
	"github.com/delordemm1/agency-portfolio-api/internal/notification/templates"
)

// maxOTPAttempts is how many wrong codes a user may submit before the outstanding code is dropped.
const maxOTPAttempts = 5

// ForgotPassword issues a fresh 6-digit code. Codes issued earlier for the same user stop working.
func (s *service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}
	pr := &PasswordReset{
		UserID:    u.ID,
		OTPHash:   hashToken(otp),
		ExpiresAt: s.now().UTC().Add(s.settings.OTPTTL),
	}
	if err := s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.DeletePasswordResetsByUser(ctx, u.ID); err != nil {
			return err
		}
		return tx.CreatePasswordReset(ctx, pr)
	}); err != nil {
		return err
	}
	s.logger.Info("password reset code issued", "user_id", u.ID)

	return notification.SendTemplate(ctx, s.notifier, templates.PasswordResetCode, s.settings.AccountFrom,
		[]string{u.Email}, templates.PasswordResetCodeData{
			FirstName:        u.FirstName,
			Code:             otp,
			ExpiresInMinutes: int(s.settings.OTPTTL.Minutes()),
		})
}

// ResetPassword consumes a matching, unexpired code and stores the new password.
// Every wrong code counts against the outstanding one, which is dropped after maxOTPAttempts misses.
func (s *service) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	// An unusable password must not cost the caller an attempt.
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	pr, err := s.repo.FindPasswordReset(ctx, u.ID, hashToken(otp))
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpiredOtp) {
			return s.recordMiss(ctx, u.ID, err)
		}
		return err
	}
	if !pr.ExpiresAt.After(s.now()) {
		return ErrInvalidOrExpiredOtp
	}

	if err := s.repo.WithTx(ctx, func(tx Repository) error {
		// Deleting first makes a concurrent reuse of the same code lose the race.
		if err := tx.DeletePasswordReset(ctx, pr.ID); err != nil {
			return err
		}
		return tx.UpdatePassword(ctx, u.ID, hash)
	}); err != nil {
		return err
	}
	s.metrics.AuthEvent("reset_password", "success")
	s.logger.Info("password reset", "user_id", u.ID)
	return nil
}

func (s *service) recordMiss(ctx context.Context, userID int64, miss error) error {
	if err := s.repo.WithTx(ctx, func(tx Repository) error {
		return tx.RecordFailedReset(ctx, userID, maxOTPAttempts)
	}); err != nil {
		s.logger.Error("failed to record reset attempt", "user_id", userID, "error", err)
		return err
	}
	s.metrics.AuthEvent("reset_password", "wrong_code")
	return miss
}
