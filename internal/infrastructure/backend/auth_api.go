package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
	"github.com/civicfix/mobile-gateway/internal/core/ports"
)

// AuthAPI implements ports.AuthAPI against the platform's auth endpoints.
type AuthAPI struct {
	client *Client
}

func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

// credentialData is the payload of every successful credential call.
type credentialData struct {
	Token string             `json:"token"`
	User  domain.BackendUser `json:"user"`
}

func (a *AuthAPI) credentialCall(ctx context.Context, path string, body any) (ports.AuthResult, error) {
	env, err := a.client.do(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return ports.AuthResult{}, err
	}
	res := ports.AuthResult{Success: env.Success, Message: env.Message}
	if !env.Success {
		return res, nil
	}

	var data credentialData
	if err := decodeData(env, &data); err != nil {
		return ports.AuthResult{}, err
	}
	res.Token = data.Token
	res.User = data.User
	return res, nil
}

func (a *AuthAPI) Login(ctx context.Context, email, password string) (ports.AuthResult, error) {
	return a.credentialCall(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (a *AuthAPI) Register(ctx context.Context, in ports.RegisterInput) (ports.AuthResult, error) {
	return a.credentialCall(ctx, "/api/auth/register", map[string]string{
		"name":     in.Name,
		"email":    in.Email,
		"phone":    in.Phone,
		"password": in.Password,
		"address":  in.Address,
	})
}

func (a *AuthAPI) LoginWithGoogle(ctx context.Context, idToken string) (ports.AuthResult, error) {
	return a.credentialCall(ctx, "/api/auth/google", map[string]string{
		"id_token": idToken,
	})
}

func (a *AuthAPI) VerifyPhoneOTP(ctx context.Context, phone, code string) (ports.AuthResult, error) {
	return a.credentialCall(ctx, "/api/auth/otp/verify", map[string]string{
		"phone": phone,
		"code":  code,
	})
}

func (a *AuthAPI) VerifyEmail(ctx context.Context, token string) (ports.AuthResult, error) {
	return a.credentialCall(ctx, "/api/auth/email/verify", map[string]string{
		"token": token,
	})
}

// dispatchCall is a fire-and-forget request where only success matters.
func (a *AuthAPI) dispatchCall(ctx context.Context, path string, body any) error {
	env, err := a.client.do(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("%s: %s", path, env.Message)
	}
	return nil
}

func (a *AuthAPI) RequestPhoneOTP(ctx context.Context, phone string) error {
	return a.dispatchCall(ctx, "/api/auth/otp/send", map[string]string{"phone": phone})
}

func (a *AuthAPI) RequestEmailVerification(ctx context.Context, email string) error {
	return a.dispatchCall(ctx, "/api/auth/email/send", map[string]string{"email": email})
}

func (a *AuthAPI) RequestPasswordReset(ctx context.Context, email string) error {
	return a.dispatchCall(ctx, "/api/auth/password/reset", map[string]string{"email": email})
}

func (a *AuthAPI) FetchProfile(ctx context.Context, token string) (domain.BackendUser, error) {
	env, err := a.client.do(ctx, http.MethodGet, "/api/users/me", token, nil)
	if err != nil {
		return domain.BackendUser{}, err
	}
	if !env.Success {
		return domain.BackendUser{}, fmt.Errorf("fetch profile: %s", env.Message)
	}

	var user domain.BackendUser
	if err := decodeData(env, &user); err != nil {
		return domain.BackendUser{}, err
	}
	return user, nil
}
