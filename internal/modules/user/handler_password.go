package user

import (
	"context"

	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/validation"
)

// ResetPasswordRequest defines the structure for the password reset request body.
type ResetPasswordRequest struct {
	Body struct {
		Email       string `json:"email" validate:"required,email"`
		OTP         string `json:"otp" validate:"required,len=6,numeric"`
		NewPassword string `json:"new_password" validate:"required,max=72"`
	}
}

// ForgotPasswordHandler emails a reset code to a registered address.
func (h *Handler) ForgotPasswordHandler(ctx context.Context, input *EmailRequest) (*MessageResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	if err := h.service.ForgotPassword(ctx, input.Body.Email); err != nil {
		h.logger.Warn("forgot password failed", "email", input.Body.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return message("OTP sent to your email"), nil
}

// ResetPasswordHandler finalizes a reset with the emailed code.
func (h *Handler) ResetPasswordHandler(ctx context.Context, input *ResetPasswordRequest) (*MessageResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	if err := h.service.ResetPassword(ctx, input.Body.Email, input.Body.OTP, input.Body.NewPassword); err != nil {
		h.logger.Warn("password reset failed", "email", input.Body.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return message("Password reset successful"), nil
}
