package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
	"github.com/civicfix/mobile-gateway/internal/core/ports"
	"github.com/civicfix/mobile-gateway/internal/core/session"
)

const (
	// ChannelPhone and ChannelEmail name the two verification channels.
	ChannelPhone = "phone"
	ChannelEmail = "email"

	minPasswordLen = 6

	// DefaultResendCooldownSeconds is how long the resend action stays
	// disabled after a successful dispatch.
	DefaultResendCooldownSeconds = 60
)

var otpCodePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Outcome is the result of a successful credential-acquisition flow.
type Outcome struct {
	User domain.User
	// PersistWarning is set when the session is live but the credential
	// record could not be written; the client should warn that the session
	// may not survive a restart.
	PersistWarning bool
}

// AuthFlows implements the credential-acquisition flows. Every flow is the
// same linear sequence: validate input locally, call the backend
// collaborator, normalize the returned user, write the credential store,
// then update session state. Failures before the store write leave both
// store and state untouched.
type AuthFlows struct {
	api             ports.AuthAPI
	registrar       ports.NotificationRegistrar
	resendLimiter   ports.ResendLimiter
	cooldowns       *CooldownSet
	cooldownSeconds int
	log             zerolog.Logger
}

func NewAuthFlows(
	api ports.AuthAPI,
	registrar ports.NotificationRegistrar,
	resendLimiter ports.ResendLimiter,
	cooldowns *CooldownSet,
	cooldownSeconds int,
	log zerolog.Logger,
) *AuthFlows {
	if cooldownSeconds <= 0 {
		cooldownSeconds = DefaultResendCooldownSeconds
	}
	return &AuthFlows{
		api:             api,
		registrar:       registrar,
		resendLimiter:   resendLimiter,
		cooldowns:       cooldowns,
		cooldownSeconds: cooldownSeconds,
		log:             log,
	}
}

// Login authenticates with email and password.
func (f *AuthFlows) Login(ctx context.Context, h *session.Handle, email, password string) (Outcome, error) {
	if email == "" {
		return Outcome{}, domain.Validation("email", "is required")
	}
	if password == "" {
		return Outcome{}, domain.Validation("password", "is required")
	}

	res, err := f.api.Login(ctx, email, password)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: login: %v", domain.ErrBackend, err)
	}
	if !res.Success {
		return Outcome{}, domain.ErrInvalidCredentials
	}

	return f.adopt(ctx, h, res)
}

// RegisterInput carries the registration form plus the confirmation field
// that never leaves the gateway.
type RegisterInput struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	Address         string
}

// Register creates an account and logs the session in.
func (f *AuthFlows) Register(ctx context.Context, h *session.Handle, in RegisterInput) (Outcome, error) {
	switch {
	case in.Name == "":
		return Outcome{}, domain.Validation("name", "is required")
	case in.Email == "":
		return Outcome{}, domain.Validation("email", "is required")
	case in.Phone == "":
		return Outcome{}, domain.Validation("phone", "is required")
	case in.Password == "":
		return Outcome{}, domain.Validation("password", "is required")
	case len(in.Password) < minPasswordLen:
		return Outcome{}, domain.Validation("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	case in.Password != in.ConfirmPassword:
		return Outcome{}, domain.Validation("confirm_password", "does not match password")
	}

	res, err := f.api.Register(ctx, ports.RegisterInput{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: in.Password,
		Address:  in.Address,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: register: %v", domain.ErrBackend, err)
	}
	if !res.Success {
		return Outcome{}, domain.ErrInvalidCredentials
	}

	return f.adopt(ctx, h, res)
}

// LoginWithGoogle exchanges an identity-provider token for a session.
func (f *AuthFlows) LoginWithGoogle(ctx context.Context, h *session.Handle, idToken string) (Outcome, error) {
	if idToken == "" {
		return Outcome{}, domain.Validation("id_token", "is required")
	}

	res, err := f.api.LoginWithGoogle(ctx, idToken)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: google login: %v", domain.ErrBackend, err)
	}
	if !res.Success {
		return Outcome{}, domain.ErrInvalidCredentials
	}

	return f.adopt(ctx, h, res)
}

// VerifyPhoneOTP confirms a 6-digit code. Incomplete codes are rejected
// locally without a round trip.
func (f *AuthFlows) VerifyPhoneOTP(ctx context.Context, h *session.Handle, phone, code string) (Outcome, error) {
	if phone == "" {
		return Outcome{}, domain.Validation("phone", "is required")
	}
	if !otpCodePattern.MatchString(code) {
		return Outcome{}, domain.Validation("code", "must be exactly 6 digits")
	}

	res, err := f.api.VerifyPhoneOTP(ctx, phone, code)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: verify otp: %v", domain.ErrBackend, err)
	}
	if !res.Success {
		return Outcome{}, domain.ErrInvalidCredentials
	}

	return f.adopt(ctx, h, res)
}

// VerifyEmail confirms an email verification token from the magic link.
func (f *AuthFlows) VerifyEmail(ctx context.Context, h *session.Handle, token string) (Outcome, error) {
	if token == "" {
		return Outcome{}, domain.Validation("token", "is required")
	}

	res, err := f.api.VerifyEmail(ctx, token)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: verify email: %v", domain.ErrBackend, err)
	}
	if !res.Success {
		return Outcome{}, domain.ErrInvalidCredentials
	}

	return f.adopt(ctx, h, res)
}

// RequestPasswordReset asks the backend to start a reset. No session or
// store mutation in any outcome.
func (f *AuthFlows) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return domain.Validation("email", "is required")
	}
	if err := f.api.RequestPasswordReset(ctx, email); err != nil {
		return fmt.Errorf("%w: password reset: %v", domain.ErrBackend, err)
	}
	return nil
}

// ResendPhoneOTP redispatches the phone code, guarded by both the in-memory
// cooldown and the durable resend limiter.
func (f *AuthFlows) ResendPhoneOTP(ctx context.Context, h *session.Handle, phone string) error {
	if phone == "" {
		return domain.Validation("phone", "is required")
	}
	return f.resend(ctx, h, ChannelPhone, phone, f.api.RequestPhoneOTP)
}

// ResendEmailVerification redispatches the verification email.
func (f *AuthFlows) ResendEmailVerification(ctx context.Context, h *session.Handle, email string) error {
	if email == "" {
		return domain.Validation("email", "is required")
	}
	return f.resend(ctx, h, ChannelEmail, email, f.api.RequestEmailVerification)
}

func (f *AuthFlows) resend(ctx context.Context, h *session.Handle, channel, target string, dispatch func(context.Context, string) error) error {
	cd := f.cooldowns.Get(h.Session.DeviceID(), channel)
	if !cd.Begin() {
		return fmt.Errorf("%w: retry in %ds", domain.ErrResendCooldown, cd.Remaining())
	}

	if f.resendLimiter != nil {
		retryAfter, err := f.resendLimiter.Reserve(ctx, channel, target)
		switch {
		case err != nil:
			// Limiter outage allows the dispatch but must not drop the
			// state out of sending, or the countdown never arms.
			f.log.Warn().Err(err).Str("channel", channel).Msg("resend limiter unavailable, allowing dispatch")
		case retryAfter > 0:
			cd.Fail()
			return fmt.Errorf("%w: retry in %ds", domain.ErrResendCooldown, retryAfter)
		}
	}

	if err := dispatch(ctx, target); err != nil {
		cd.Fail()
		return fmt.Errorf("%w: resend %s: %v", domain.ErrBackend, channel, err)
	}

	cd.Arm(f.cooldownSeconds)
	return nil
}

// ResendState exposes the cooldown for one channel so the client can render
// the countdown.
func (f *AuthFlows) ResendState(h *session.Handle, channel string) (CooldownState, int) {
	cd := f.cooldowns.Get(h.Session.DeviceID(), channel)
	return cd.State(), cd.Remaining()
}

// RefreshProfile re-reads the profile from the backend, re-confirming the
// role. The credential record is overwritten with the fresh identity; the
// token is untouched.
func (f *AuthFlows) RefreshProfile(ctx context.Context, h *session.Handle) (domain.User, error) {
	snap := h.Session.Snapshot()
	if !snap.Authenticated {
		return domain.User{}, domain.ErrUnauthenticated
	}

	backendUser, err := f.api.FetchProfile(ctx, snap.Token)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: fetch profile: %v", domain.ErrBackend, err)
	}
	user, err := backendUser.Normalize()
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	if err := h.Store.Save(ctx, snap.Token, user, now); err != nil {
		f.log.Warn().Err(err).Str("user_id", user.ID).Msg("profile refresh not persisted")
	}
	h.Session.PatchUser(user, now)
	return user, nil
}

// Logout clears the credential store first, then the in-memory state, and
// tears down any countdowns the device still owns. Logging out an already
// logged-out session succeeds.
func (f *AuthFlows) Logout(ctx context.Context, h *session.Handle) error {
	if err := h.Store.Clear(ctx); err != nil {
		return err
	}
	h.Session.Clear()
	f.cooldowns.DropDevice(h.Session.DeviceID())
	return nil
}

// adopt commits a successful backend result: normalize, persist, then
// update session state, then best-effort push registration.
func (f *AuthFlows) adopt(ctx context.Context, h *session.Handle, res ports.AuthResult) (Outcome, error) {
	user, err := res.User.Normalize()
	if err != nil {
		return Outcome{}, err
	}

	now := time.Now().UTC()
	persistWarning := false
	if err := h.Store.Save(ctx, res.Token, user, now); err != nil {
		// The session still comes up; the client is told persistence is
		// not guaranteed across a restart.
		persistWarning = true
		f.log.Warn().Err(err).Str("user_id", user.ID).Msg("credential record not persisted")
	}
	h.Session.SetCredentials(res.Token, user, now)

	if f.registrar != nil {
		if ok, err := f.registrar.RegisterForUserNotifications(ctx, user.ID); err != nil || !ok {
			f.log.Warn().Err(err).Str("user_id", user.ID).Msg("push registration failed")
		}
	}

	f.log.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Str("device_id", h.Session.DeviceID()).
		Msg("credentials acquired")

	return Outcome{User: user, PersistWarning: persistWarning}, nil
}
