package middleware

import (
	"context"
	"strings"

	"github.com/delordemm1/agency-portfolio-api/internal/modules/user"
)

// Authorizer resolves a bearer token into a gate decision. user.Service satisfies it.
type Authorizer interface {
	Authorize(ctx context.Context, bearer string, req user.Requirement) user.Decision
}

// bearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively; anything else yields "".
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
