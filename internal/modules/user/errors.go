package user

import (
	"net/http"

	"github.com/delordemm1/agency-portfolio-api/internal/domainerr"
)

// --- Pre-defined Domain Errors ---
// These variables represent specific, known error conditions in the user domain.

var (
	// Resource & identity
	ErrNotFound = domainerr.New("ErrNotFound", http.StatusNotFound,
		"user not found", "urn:problem:user/err-not-found")

	ErrUnauthorized = domainerr.New("ErrUnauthorized", http.StatusUnauthorized,
		"could not validate credentials", "urn:problem:user/err-unauthorized")

	ErrForbidden = domainerr.New("ErrForbidden", http.StatusForbidden,
		"admin privileges required", "urn:problem:user/err-forbidden")

	// Login & status gating. Unknown email and wrong password share one message.
	ErrInvalidCredentials = domainerr.New("ErrInvalidCredentials", http.StatusForbidden,
		"invalid email or password", "urn:problem:user/err-invalid-credentials")

	ErrNotVerified = domainerr.New("ErrNotVerified", http.StatusForbidden,
		"please verify your email before logging in", "urn:problem:user/err-not-verified")

	ErrBlocked = domainerr.New("ErrBlocked", http.StatusForbidden,
		"your account has been blocked", "urn:problem:user/err-blocked")

	// Registration
	ErrDuplicateEmail = domainerr.New("ErrDuplicateEmail", http.StatusBadRequest,
		"email already registered", "urn:problem:user/err-duplicate-email")

	ErrDuplicatePhone = domainerr.New("ErrDuplicatePhone", http.StatusBadRequest,
		"phone number already registered", "urn:problem:user/err-duplicate-phone")

	// Email verification
	ErrInvalidOrExpiredToken = domainerr.New("ErrInvalidOrExpiredToken", http.StatusBadRequest,
		"invalid or expired verification token", "urn:problem:user/err-invalid-or-expired-token")

	ErrAlreadyActive = domainerr.New("ErrAlreadyActive", http.StatusBadRequest,
		"account is already verified", "urn:problem:user/err-already-active")

	// Password reset
	ErrInvalidOrExpiredOtp = domainerr.New("ErrInvalidOrExpiredOtp", http.StatusBadRequest,
		"invalid or expired OTP", "urn:problem:user/err-invalid-or-expired-otp")

	// bcrypt only hashes the first 72 bytes and refuses anything longer.
	ErrPasswordTooLong = domainerr.New("ErrValidation", http.StatusBadRequest,
		"password must be at most 72 bytes", "urn:problem:validation-error")

	// Federated login
	ErrInvalidAssertion = domainerr.New("ErrInvalidAssertion", http.StatusUnauthorized,
		"invalid Google token", "urn:problem:user/err-invalid-assertion")

	// Admin
	ErrInvalidStatusTransition = domainerr.New("ErrInvalidStatusTransition", http.StatusConflict,
		"status change not allowed for this account", "urn:problem:user/err-invalid-status-transition")
)
