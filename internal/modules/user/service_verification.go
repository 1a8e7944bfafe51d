package user

import (
	"context"
	"errors"
)

// VerifyEmail activates the account holding token and signs the user in.
// Repeating the call with the same link inside the replay window signs the user in again.
func (s *service) VerifyEmail(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidOrExpiredToken
	}
	return s.verify(ctx, hashToken(token), true)
}

func (s *service) verify(ctx context.Context, h string, retry bool) (*Session, error) {
	u, err := s.repo.FindByVerificationToken(ctx, h)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	switch u.Status {
	case StatusBlocked:
		return nil, ErrBlocked

	case StatusActive:
		if !s.isReplay(u, h) {
			return nil, ErrInvalidOrExpiredToken
		}
		s.logger.Info("repeated email verification", "user_id", u.ID)
		return s.session(u)

	default:
		if u.VerificationToken == nil || *u.VerificationToken != h {
			return nil, ErrInvalidOrExpiredToken
		}
		now := s.now().UTC()
		if err := s.repo.Activate(ctx, u.ID, h, now); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			// The account changed after it was read: a parallel click, a resend or a block.
			if retry {
				return s.verify(ctx, h, false)
			}
			return nil, ErrInvalidOrExpiredToken
		}
		u.Status = StatusActive
		u.VerificationToken = nil
		u.VerifiedTokenHash = &h
		u.VerifiedAt = &now
		s.metrics.AuthEvent("verify_email", "success")
		s.logger.Info("email verified", "user_id", u.ID)
		return s.session(u)
	}
}

func (s *service) isReplay(u *User, h string) bool {
	if u.VerifiedTokenHash == nil || *u.VerifiedTokenHash != h || u.VerifiedAt == nil {
		return false
	}
	return s.now().Sub(*u.VerifiedAt) <= s.settings.ReplayWindow
}

// resendGate rejects accounts that no longer need a verification link.
func resendGate(u *User) error {
	switch u.Status {
	case StatusActive:
		return ErrAlreadyActive
	case StatusBlocked:
		return ErrBlocked
	}
	return nil
}

// ResendVerification replaces the outstanding token, which invalidates the previous link.
func (s *service) ResendVerification(ctx context.Context, email string) error {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := resendGate(u); err != nil {
		return err
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return err
	}
	h := hashToken(token)
	if err := s.repo.SetVerificationToken(ctx, u.ID, h); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		// No longer pending: report what the account became.
		current, ferr := s.repo.FindByID(ctx, u.ID)
		if ferr != nil {
			return ferr
		}
		if gerr := resendGate(current); gerr != nil {
			return gerr
		}
		return err
	}
	u.VerificationToken = &h
	return s.sendVerification(ctx, u, token)
}
