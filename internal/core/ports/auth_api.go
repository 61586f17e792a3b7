package ports

import (
	"context"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
)

// AuthResult is what every credential-acquisition call on the backend
// resolves to. Expected failures (bad password, unknown code) come back as
// Success=false with a message, not as an error; errors are reserved for
// transport and server faults.
type AuthResult struct {
	Success bool
	Message string
	Token   string
	User    domain.BackendUser
}

// RegisterInput carries the registration fields forwarded to the backend.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Address  string
}

// AuthAPI is the backend authentication collaborator. The gateway never
// hashes passwords or mints tokens itself; it forwards credentials and
// consumes the (token, user) pair the backend returns.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	LoginWithGoogle(ctx context.Context, idToken string) (AuthResult, error)
	VerifyPhoneOTP(ctx context.Context, phone, code string) (AuthResult, error)
	VerifyEmail(ctx context.Context, token string) (AuthResult, error)
	RequestPhoneOTP(ctx context.Context, phone string) error
	RequestEmailVerification(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	// FetchProfile re-reads the caller's profile; used to re-confirm the
	// user's role without a full login.
	FetchProfile(ctx context.Context, token string) (domain.BackendUser, error)
}

// NotificationRegistrar registers a logged-in user for push notifications.
// Registration failures are never fatal to a credential flow.
type NotificationRegistrar interface {
	RegisterForUserNotifications(ctx context.Context, userID string) (bool, error)
}
