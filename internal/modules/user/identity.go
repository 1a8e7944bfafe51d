package user

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// Identity is the subset of a verified Google ID token the bridge uses.
type Identity struct {
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
}

// IdentityVerifier checks an externally issued identity assertion.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken, audience string) (*Identity, error)
}

// GoogleVerifier validates Google ID tokens: signature against Google's keys, audience and expiry.
type GoogleVerifier struct {
	validator *idtoken.Validator
}

func NewGoogleVerifier(ctx context.Context) (*GoogleVerifier, error) {
	v, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("create id token validator: %w", err)
	}
	return &GoogleVerifier{validator: v}, nil
}

func (g *GoogleVerifier) Verify(ctx context.Context, idToken, audience string) (*Identity, error) {
	payload, err := g.validator.Validate(ctx, idToken, audience)
	if err != nil {
		return nil, err
	}
	return &Identity{
		Email:         claimString(payload.Claims, "email"),
		EmailVerified: claimBool(payload.Claims, "email_verified"),
		GivenName:     claimString(payload.Claims, "given_name"),
		FamilyName:    claimString(payload.Claims, "family_name"),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

// claimBool accepts both JSON booleans and the "true" string some issuers emit.
func claimBool(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
