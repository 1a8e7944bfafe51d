package user

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
)

// Handler holds the dependencies for the user module's HTTP handlers.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new handler for the user module.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

var bearerAuth = []map[string][]string{{"bearer": {}}}

// RegisterRoutes wires the account, profile and admin operations.
func (h *Handler) RegisterRoutes(api huma.API, g httpx.Guards) {
	// --- Authentication ---
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/login",
		Summary:     "Log in with email and password",
		Tags:        []string{"Auth"},
		Middlewares: g.Throttle,
	}, h.LoginHandler)

	huma.Register(api, huma.Operation{
		OperationID:   "signup",
		Method:        http.MethodPost,
		Path:          "/signup",
		Summary:       "Create an account pending email verification",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   g.Throttle,
	}, h.SignupHandler)

	huma.Register(api, huma.Operation{
		OperationID: "google-signup-login",
		Method:      http.MethodPost,
		Path:        "/google-signup-login",
		Summary:     "Sign in or sign up with a Google ID token",
		Tags:        []string{"Auth"},
		Middlewares: g.Throttle,
	}, h.GoogleLoginHandler)

	// --- Email verification ---
	huma.Register(api, huma.Operation{
		OperationID: "verify-email",
		Method:      http.MethodGet,
		Path:        "/api/verify-email",
		Summary:     "Verify an email address and sign in",
		Description: "Activates the pending account that owns the token and returns a bearer token. " +
			"Opening the same link again after activation returns a fresh bearer token for 24 hours " +
			"(VERIFICATION_REPLAY_WINDOW); after that the link answers 400 ErrInvalidOrExpiredToken " +
			"and the user signs in with their password instead.",
		Tags: []string{"Auth"},
	}, h.VerifyEmailHandler)

	huma.Register(api, huma.Operation{
		OperationID: "resend-verification",
		Method:      http.MethodPost,
		Path:        "/resend-verification",
		Summary:     "Send a new verification link",
		Tags:        []string{"Auth"},
		Middlewares: g.Throttle,
	}, h.ResendVerificationHandler)

	// --- Password reset ---
	huma.Register(api, huma.Operation{
		OperationID: "forgot-password",
		Method:      http.MethodPost,
		Path:        "/forgot-password",
		Summary:     "Email a one-time password reset code",
		Tags:        []string{"Auth"},
		Middlewares: g.Throttle,
	}, h.ForgotPasswordHandler)

	huma.Register(api, huma.Operation{
		OperationID: "reset-password",
		Method:      http.MethodPost,
		Path:        "/reset-password",
		Summary:     "Reset the password with a one-time code",
		Description: "Five wrong codes for the same account discard the outstanding code; " +
			"request a new one with forgot-password.",
		Tags:        []string{"Auth"},
		Middlewares: g.Throttle,
	}, h.ResetPasswordHandler)

	// --- Profile ---
	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPut,
		Path:        "/api/profile",
		Summary:     "Update the current user's profile",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
		Middlewares: g.User,
	}, h.UpdateProfileHandler)

	h.registerAdminRoutes(api, g)
}

// --- Shared DTOs ---

// UserBody is the public representation of an account.
type UserBody struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber *string   `json:"phone_number"`
	IsAdmin     bool      `json:"is_admin"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToUserBody(u *User) UserBody {
	return UserBody{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		IsAdmin:     u.IsAdmin,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
	}
}

type UserResponse struct {
	Body UserBody
}

type TokenResponse struct {
	Body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		IsAdmin     bool   `json:"is_admin"`
		FirstName   string `json:"first_name"`
		Status      Status `json:"status"`
	}
}

func toTokenResponse(s *Session) *TokenResponse {
	var resp TokenResponse
	resp.Body.AccessToken = s.AccessToken
	resp.Body.TokenType = "bearer"
	resp.Body.IsAdmin = s.User.IsAdmin
	resp.Body.FirstName = s.User.FirstName
	resp.Body.Status = s.User.Status
	return &resp
}

type MessageResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func message(msg string) *MessageResponse {
	var resp MessageResponse
	resp.Body.Message = msg
	return &resp
}
