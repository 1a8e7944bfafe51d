package templates

// VerifyEmailData holds variables for the account verification link email.
type VerifyEmailData struct {
	FirstName       string
	VerificationURL string
}

var VerifyEmail = Expect[VerifyEmailData]("user.verify_email")

// PasswordResetCodeData holds variables for sending a 6-digit password reset code.
type PasswordResetCodeData struct {
	FirstName        string
	Code             string
	ExpiresInMinutes int
}

var PasswordResetCode = Expect[PasswordResetCodeData]("user.password_reset_code")

// BroadcastData is an admin announcement. Message is plain text and is escaped in the HTML body.
type BroadcastData struct {
	Subject string
	Message string
}

var Broadcast = Expect[BroadcastData]("admin.broadcast")

type ContactSubmissionData struct {
	Name    string
	Email   string
	Message string
}

var ContactSubmission = Expect[ContactSubmissionData]("contact.submission")

// OrderRequestData is sent to the agency mailbox when a signed-in user asks for a quote on a work.
type OrderRequestData struct {
	WorkID        int64
	WorkTitle     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Message       string
}

var OrderRequest = Expect[OrderRequestData]("catalog.order_request")
