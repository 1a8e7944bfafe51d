package httpx

import "github.com/danielgtaylor/huma/v2"

// Guards bundles the per-operation middlewares that modules attach when registering routes.
// The server builds them once so modules never import the middleware package directly.
type Guards struct {
	// Optional resolves the caller when a valid bearer token is present and never rejects.
	Optional huma.Middlewares
	// User requires an authenticated, active account.
	User huma.Middlewares
	// Admin requires an authenticated, active administrator.
	Admin huma.Middlewares
	// Throttle applies per-client rate limiting to credential endpoints.
	Throttle huma.Middlewares
}

// With concatenates middleware sets, e.g. guards.With(g.Throttle, g.User).
func With(sets ...huma.Middlewares) huma.Middlewares {
	var out huma.Middlewares
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}
