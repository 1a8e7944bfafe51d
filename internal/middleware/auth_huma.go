package middleware

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/agency-portfolio-api/internal/contextx"
	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/modules/user"
)

// AuthorizeHuma is a router-agnostic Huma middleware that runs the authorization gate
// for one requirement level. An authenticated account is stored under contextx.UserKey
// for downstream handlers; a denial is written as problem+json and stops the chain.
func AuthorizeHuma(a Authorizer, req user.Requirement, logger *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		decision := a.Authorize(ctx.Context(), bearerToken(ctx.Header("Authorization")), req)

		switch decision.Kind {
		case user.Denied:
			logger.Warn("request denied by authorization gate",
				"path", ctx.URL().Path, "operation", ctx.Operation().OperationID, "reason", decision.Reason)
			httpx.WriteProblem(ctx, decision.Reason)
			return
		case user.Authenticated:
			ctx = huma.WithValue(ctx, contextx.UserKey, decision.User)
		}
		next(ctx)
	}
}

// NewGuards builds the middleware sets handed to every module's RegisterRoutes.
func NewGuards(a Authorizer, limiter *IPRateLimiter, logger *slog.Logger) httpx.Guards {
	g := httpx.Guards{
		Optional: huma.Middlewares{AuthorizeHuma(a, user.RequireOptional, logger)},
		User:     huma.Middlewares{AuthorizeHuma(a, user.RequireUser, logger)},
		Admin:    huma.Middlewares{AuthorizeHuma(a, user.RequireAdmin, logger)},
	}
	if limiter != nil {
		g.Throttle = huma.Middlewares{limiter.Huma()}
	}
	return g
}
