package handler

import "github.com/civicfix/mobile-gateway/internal/core/domain"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Address         string `json:"address,omitempty"`
}

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

type otpVerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type emailVerifyRequest struct {
	Token string `json:"token"`
}

type resendRequest struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// sessionResponse is returned by every successful credential flow and by the
// session probe: enough for the shell to mount the right navigator.
type sessionResponse struct {
	Navigator      string       `json:"navigator"`
	User           *domain.User `json:"user,omitempty"`
	PersistWarning bool         `json:"persist_warning,omitempty"`
	StaleLogout    bool         `json:"stale_logout,omitempty"`
}

type resendStateResponse struct {
	State     string `json:"state"`
	Remaining int    `json:"remaining_seconds"`
}
