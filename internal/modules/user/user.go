package user

import (
	"time"
)

// Status is the lifecycle state of an account: pending until the email is verified,
// then active, with admins toggling active and blocked.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// User represents a user in the system.
// This is the core entity for the user module, used across the repository, service, and handler layers.
type User struct {
	ID           int64   `db:"id"`
	Email        string  `db:"email"`
	FirstName    string  `db:"first_name"`
	LastName     string  `db:"last_name"`
	PhoneNumber  *string `db:"phone_number"`
	PasswordHash *string `db:"password_hash"`
	IsAdmin      bool    `db:"is_admin"`
	Status       Status  `db:"status"`
	// VerificationToken holds the hash of the outstanding email verification token.
	// It is non-nil only while the account is pending.
	VerificationToken *string `db:"verification_token"`
	// VerifiedTokenHash keeps the hash of the token that activated the account so a
	// repeated click on the same link can be recognised.
	VerifiedTokenHash *string    `db:"verified_token_hash"`
	VerifiedAt        *time.Time `db:"verified_at"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// PasswordReset is one outstanding OTP challenge. Only the hash of the code is stored.
type PasswordReset struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	OTPHash   string    `db:"otp_hash"`
	Attempts  int       `db:"attempts"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// Session is what a successful login, verification or federated sign-in yields.
type Session struct {
	AccessToken string
	User        *User
}

func (u *User) Phone() string {
	if u.PhoneNumber == nil {
		return ""
	}
	return *u.PhoneNumber
}
