package user

import (
	"context"

	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/validation"
)

// --- DTOs (Data Transfer Objects) ---

// LoginRequest defines the structure for the user login request body.
type LoginRequest struct {
	Body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
}

// SignupRequest defines the structure for the user registration request body.
type SignupRequest struct {
	Body struct {
		Email       string `json:"email" validate:"required,email"`
		FirstName   string `json:"first_name" validate:"required,max=100"`
		LastName    string `json:"last_name" validate:"required,max=100"`
		PhoneNumber string `json:"phone_number" validate:"required,max=32"`
		Password    string `json:"password" validate:"required,max=72"`
	}
}

type GoogleLoginRequest struct {
	Body struct {
		GoogleIDToken string  `json:"google_id_token" validate:"required"`
		PhoneNumber   *string `json:"phone_number,omitempty" validate:"omitempty,max=32"`
	}
}

// --- Handlers ---

// LoginHandler handles the user login endpoint.
func (h *Handler) LoginHandler(ctx context.Context, input *LoginRequest) (*TokenResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	session, err := h.service.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		h.logger.Warn("login attempt failed", "email", input.Body.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}

	h.logger.Info("user logged in successfully", "user_id", session.User.ID)
	return toTokenResponse(session), nil
}

// SignupHandler handles the user registration endpoint.
func (h *Handler) SignupHandler(ctx context.Context, input *SignupRequest) (*UserResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	u, err := h.service.Signup(ctx, SignupInput{
		Email:       input.Body.Email,
		FirstName:   input.Body.FirstName,
		LastName:    input.Body.LastName,
		PhoneNumber: input.Body.PhoneNumber,
		Password:    input.Body.Password,
	})
	if err != nil {
		h.logger.Warn("signup failed", "email", input.Body.Email, "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return &UserResponse{Body: ToUserBody(u)}, nil
}

func (h *Handler) GoogleLoginHandler(ctx context.Context, input *GoogleLoginRequest) (*TokenResponse, error) {
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	session, err := h.service.GoogleLogin(ctx, input.Body.GoogleIDToken, input.Body.PhoneNumber)
	if err != nil {
		h.logger.Warn("google sign-in failed", "error", err)
		return nil, httpx.ToProblem(ctx, err)
	}
	return toTokenResponse(session), nil
}
