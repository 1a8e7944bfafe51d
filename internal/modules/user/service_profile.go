package user

import (
	"context"
	"strings"
)

// ProfileChanges lists the editable profile fields. Nil or blank fields are left unchanged.
type ProfileChanges struct {
	Email       *string
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// GetProfile retrieves a user's profile information.
func (s *service) GetProfile(ctx context.Context, userID int64) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// UpdateProfile applies a partial update, keeping email and phone unique.
func (s *service) UpdateProfile(ctx context.Context, userID int64, in ProfileChanges) (*User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.applyProfile(ctx, u, in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("profile updated", "user_id", u.ID)
	return u, nil
}

func (s *service) applyProfile(ctx context.Context, u *User, in ProfileChanges) error {
	email, phone := value(in.Email), value(in.PhoneNumber)
	if email == u.Email {
		email = ""
	}
	if phone == u.Phone() {
		phone = ""
	}
	if err := s.ensureUnique(ctx, u.ID, email, phone); err != nil {
		return err
	}

	if email != "" {
		u.Email = email
	}
	if v := value(in.FirstName); v != "" {
		u.FirstName = v
	}
	if v := value(in.LastName); v != "" {
		u.LastName = v
	}
	if phone != "" {
		u.PhoneNumber = &phone
	}
	return nil
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
