package user

import (
	"context"

	"github.com/delordemm1/agency-portfolio-api/internal/contextx"
)

// WithUser stores the authorized account in ctx.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextx.UserKey, u)
}

// FromContext returns the account stored by the authorization middleware, if any.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(contextx.UserKey).(*User)
	return u, ok && u != nil
}
