package user

import (
	"context"
	"errors"
	"strings"

	"github.com/delordemm1/agency-portfolio-api/internal/notification"
	"github.com/delordemm1/agency-portfolio-api/internal/notification/templates"
)

// AdminChanges is a profile edit made by an administrator, optionally setting a new password.
type AdminChanges struct {
	ProfileChanges
	Password *string
}

// Broadcast audiences.
const (
	SendAll               = "all"
	SendAllExceptAdmin    = "all_except_admin"
	SendAllExceptSelected = "all_except_selected"
	SendOnlySelected      = "only_selected"
)

type BroadcastInput struct {
	Subject        string
	Message        string
	SendOption     string
	SelectedEmails []string
}

func (s *service) ListUsers(ctx context.Context, skip, limit int) ([]User, int, error) {
	return s.repo.List(ctx, skip, limit)
}

func (s *service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) AdminUpdateUser(ctx context.Context, id int64, in AdminChanges) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyProfile(ctx, u, in.ProfileChanges); err != nil {
		return nil, err
	}
	var hash string
	if pw := value(in.Password); pw != "" {
		if hash, err = s.hasher.Hash(pw); err != nil {
			return nil, err
		}
		u.PasswordHash = &hash
	}
	if err := s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.UpdateProfile(ctx, u); err != nil {
			return err
		}
		if hash == "" {
			return nil
		}
		return tx.UpdatePassword(ctx, u.ID, hash)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("user updated by admin", "user_id", u.ID)
	return u, nil
}

// ToggleBlock flips active and blocked. Pending accounts and the acting admin cannot be toggled.
func (s *service) ToggleBlock(ctx context.Context, actorID, id int64) (*User, error) {
	if actorID == id {
		return nil, ErrInvalidStatusTransition.WithDetail("you cannot block your own account")
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var next Status
	switch u.Status {
	case StatusActive:
		next = StatusBlocked
	case StatusBlocked:
		next = StatusActive
	default:
		return nil, ErrInvalidStatusTransition.WithDetail("pending accounts must verify their email first")
	}
	if err := s.repo.SetStatus(ctx, u.ID, u.Status, next); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidStatusTransition.WithDetail("the account changed meanwhile, reload and try again")
		}
		return nil, err
	}
	u.Status = next
	s.logger.Info("user status toggled", "user_id", u.ID, "status", u.Status, "by", actorID)
	return u, nil
}

func (s *service) DeleteUser(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrForbidden.WithDetail("you cannot delete your own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id, "by", actorID)
	return nil
}

// Broadcast queues one message per recipient and reports how many were queued.
func (s *service) Broadcast(ctx context.Context, in BroadcastInput) (int, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	recipients := selectRecipients(users, in.SendOption, in.SelectedEmails)

	data := templates.BroadcastData{Subject: in.Subject, Message: in.Message}
	for i, to := range recipients {
		if err := notification.SendTemplate(ctx, s.notifier, templates.Broadcast, "", []string{to}, data); err != nil {
			s.logger.Error("broadcast interrupted", "queued", i, "total", len(recipients), "error", err)
			return i, err
		}
	}
	s.logger.Info("broadcast queued", "recipients", len(recipients), "option", in.SendOption)
	return len(recipients), nil
}

func selectRecipients(users []User, option string, selected []string) []string {
	picked := make(map[string]bool, len(selected))
	for _, e := range selected {
		picked[strings.ToLower(strings.TrimSpace(e))] = true
	}

	out := make([]string, 0, len(users))
	seen := make(map[string]bool, len(users))
	for _, u := range users {
		key := strings.ToLower(u.Email)
		if seen[key] {
			continue
		}
		var include bool
		switch option {
		case SendAll:
			include = true
		case SendAllExceptAdmin:
			include = !u.IsAdmin
		case SendAllExceptSelected:
			include = !picked[key]
		case SendOnlySelected:
			include = picked[key]
		}
		if include {
			seen[key] = true
			out = append(out, u.Email)
		}
	}
	return out
}
