package user

import (
	"context"
	"errors"

	"github.com/delordemm1/agency-portfolio-api/internal/domainerr"
)

// Requirement is the capability an operation asks of its caller.
type Requirement int

const (
	// RequireOptional personalises a public operation and never rejects.
	RequireOptional Requirement = iota
	// RequireUser needs an active account.
	RequireUser
	// RequireAdmin needs an active administrator.
	RequireAdmin
)

type DecisionKind int

const (
	Anonymous DecisionKind = iota
	Authenticated
	Denied
)

// Decision is the outcome of Authorize. User is set when Kind is Authenticated,
// Reason when Kind is Denied.
type Decision struct {
	Kind   DecisionKind
	User   *User
	Reason error
}

func authenticated(u *User) Decision { return Decision{Kind: Authenticated, User: u} }

// Authorize re-reads the account on every call, so blocking takes effect for tokens already issued.
func (s *service) Authorize(ctx context.Context, bearer string, req Requirement) Decision {
	deny := func(reason error) Decision {
		if req == RequireOptional {
			return Decision{Kind: Anonymous}
		}
		return Decision{Kind: Denied, Reason: reason}
	}

	if bearer == "" {
		return deny(ErrUnauthorized.WithDetail("not authenticated"))
	}
	userID, err := s.tokens.Verify(bearer)
	if err != nil {
		return deny(ErrUnauthorized.WithCause(err))
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return deny(ErrUnauthorized)
		}
		s.logger.Error("authorization lookup failed", "user_id", userID, "error", err)
		return deny(domainerr.ErrInternal.WithCause(err))
	}

	if err := gate(u); err != nil {
		return deny(err)
	}
	if req == RequireAdmin && !u.IsAdmin {
		return deny(ErrForbidden)
	}
	return authenticated(u)
}
