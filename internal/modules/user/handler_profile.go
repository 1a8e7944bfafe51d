package user

import (
	"context"

	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/validation"
)

// UpdateProfileRequest carries a partial profile update; omitted fields stay unchanged.
type UpdateProfileRequest struct {
	Body struct {
		Email       *string `json:"email,omitempty" validate:"omitempty,email"`
		FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
		LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
		PhoneNumber *string `json:"phone_number,omitempty" validate:"omitempty,max=32"`
	}
}

// UpdateProfileHandler updates the profile of the currently authenticated user.
func (h *Handler) UpdateProfileHandler(ctx context.Context, input *UpdateProfileRequest) (*UserResponse, error) {
	current, ok := FromContext(ctx)
	if !ok {
		h.logger.Error("user not found in context for update profile")
		return nil, httpx.ToProblem(ctx, ErrUnauthorized)
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	u, err := h.service.UpdateProfile(ctx, current.ID, ProfileChanges{
		Email:       input.Body.Email,
		FirstName:   input.Body.FirstName,
		LastName:    input.Body.LastName,
		PhoneNumber: input.Body.PhoneNumber,
	})
	if err != nil {
		h.logger.Warn("failed to update user profile", "user_id", current.ID, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return &UserResponse{Body: ToUserBody(u)}, nil
}
