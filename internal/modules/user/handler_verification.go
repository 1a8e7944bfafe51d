package user

import (
	"context"

	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/validation"
)

type VerifyEmailRequest struct {
	Token string `query:"token" doc:"Token from the verification link"`
}

// EmailRequest is shared by the resend and forgot-password operations.
type EmailRequest struct {
	Body struct {
		Email string `json:"email" validate:"required,email"`
	}
}

func (h *Handler) VerifyEmailHandler(ctx context.Context, input *VerifyEmailRequest) (*TokenResponse, error) {
	session, err := h.service.VerifyEmail(ctx, input.Token)
	if err != nil {
		h.logger.Warn("email verification failed", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return toTokenResponse(session), nil
}

func (h *Handler) ResendVerificationHandler(ctx context.Context, input *EmailRequest) (*MessageResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	if err := h.service.ResendVerification(ctx, input.Body.Email); err != nil {
		h.logger.Warn("resend verification failed", "email", input.Body.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return message("Verification email sent"), nil
}
