package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
	"github.com/civicfix/mobile-gateway/internal/core/ports"
	"github.com/civicfix/mobile-gateway/internal/core/session"
)

type stubStorage struct {
	values map[string]string
}

func newStubStorage() *stubStorage {
	return &stubStorage{values: make(map[string]string)}
}

func (s *stubStorage) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *stubStorage) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func (s *stubStorage) Remove(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

type stubAuthAPI struct {
	loginFn        func(ctx context.Context, email, password string) (ports.AuthResult, error)
	registerFn     func(ctx context.Context, in ports.RegisterInput) (ports.AuthResult, error)
	verifyOTPFn    func(ctx context.Context, phone, code string) (ports.AuthResult, error)
	requestOTPFn   func(ctx context.Context, phone string) error
	fetchProfileFn func(ctx context.Context, token string) (domain.BackendUser, error)
}

func (s *stubAuthAPI) Login(ctx context.Context, email, password string) (ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthAPI) Register(ctx context.Context, in ports.RegisterInput) (ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthAPI) LoginWithGoogle(context.Context, string) (ports.AuthResult, error) {
	return ports.AuthResult{}, errors.New("not implemented")
}

func (s *stubAuthAPI) VerifyPhoneOTP(ctx context.Context, phone, code string) (ports.AuthResult, error) {
	return s.verifyOTPFn(ctx, phone, code)
}

func (s *stubAuthAPI) VerifyEmail(context.Context, string) (ports.AuthResult, error) {
	return ports.AuthResult{}, errors.New("not implemented")
}

func (s *stubAuthAPI) RequestPhoneOTP(ctx context.Context, phone string) error {
	return s.requestOTPFn(ctx, phone)
}

func (s *stubAuthAPI) RequestEmailVerification(context.Context, string) error {
	return errors.New("not implemented")
}

func (s *stubAuthAPI) RequestPasswordReset(context.Context, string) error {
	return nil
}

func (s *stubAuthAPI) FetchProfile(ctx context.Context, token string) (domain.BackendUser, error) {
	return s.fetchProfileFn(ctx, token)
}

func newTestHandle() (*session.Handle, *stubStorage) {
	kv := newStubStorage()
	return &session.Handle{
		Session: session.New("device-1"),
		Store:   session.NewCredentialStore(kv),
	}, kv
}

func newFlows(api ports.AuthAPI) *AuthFlows {
	return NewAuthFlows(api, nil, nil, NewCooldownSet(), 60, zerolog.Nop())
}

func TestAuthFlows_Login_FreshLogin(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(_ context.Context, email, password string) (ports.AuthResult, error) {
			if email != "a@b.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return ports.AuthResult{
				Success: true,
				Token:   "h.p.s",
				User:    domain.BackendUser{ID: "1", Role: "CITIZEN", Email: "a@b.com"},
			}, nil
		},
	}
	h, _ := newTestHandle()

	out, err := newFlows(api).Login(context.Background(), h, "a@b.com", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if out.User.Role != domain.RoleCitizen {
		t.Fatalf("expected normalized role citizen, got %s", out.User.Role)
	}
	if out.PersistWarning {
		t.Fatalf("unexpected persist warning")
	}

	snap := h.Session.Snapshot()
	if !snap.Authenticated || snap.Token != "h.p.s" {
		t.Fatalf("unexpected session state: %+v", snap)
	}

	record, err := h.Store.Load(context.Background())
	if err != nil {
		t.Fatalf("store Load failed: %v", err)
	}
	if record == nil || record.Token != "h.p.s" {
		t.Fatalf("expected credential record persisted, got %+v", record)
	}
	if record.User.Role != domain.RoleCitizen {
		t.Fatalf("persisted role not normalized: %s", record.User.Role)
	}
}

func TestAuthFlows_Login_ValidationBeforeNetwork(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(context.Context, string, string) (ports.AuthResult, error) {
			t.Fatalf("backend must not be called for invalid input")
			return ports.AuthResult{}, nil
		},
	}
	flows := newFlows(api)
	h, _ := newTestHandle()

	if _, err := flows.Login(context.Background(), h, "", "secret"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := flows.Login(context.Background(), h, "a@b.com", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthFlows_Login_FailureLeavesStateUntouched(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(context.Context, string, string) (ports.AuthResult, error) {
			return ports.AuthResult{Success: false, Message: "bad credentials"}, nil
		},
	}
	h, kv := newTestHandle()

	_, err := newFlows(api).Login(context.Background(), h, "a@b.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if h.Session.Snapshot().Authenticated {
		t.Fatalf("failed login must not authenticate")
	}
	if len(kv.values) != 0 {
		t.Fatalf("failed login must not write the store, got %v", kv.values)
	}
}

func TestAuthFlows_Login_BackendFaultIsRecoverable(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(context.Context, string, string) (ports.AuthResult, error) {
			return ports.AuthResult{}, errors.New("connection refused")
		},
	}
	h, kv := newTestHandle()

	_, err := newFlows(api).Login(context.Background(), h, "a@b.com", "secret")
	if !errors.Is(err, domain.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
	if h.Session.Snapshot().Authenticated || len(kv.values) != 0 {
		t.Fatalf("backend fault must not mutate session or store")
	}
}

func TestAuthFlows_Register_Validation(t *testing.T) {
	api := &stubAuthAPI{
		registerFn: func(context.Context, ports.RegisterInput) (ports.AuthResult, error) {
			t.Fatalf("backend must not be called for invalid input")
			return ports.AuthResult{}, nil
		},
	}
	flows := newFlows(api)
	h, _ := newTestHandle()

	base := RegisterInput{
		Name: "Ada", Email: "a@b.com", Phone: "+15550100",
		Password: "secret1", ConfirmPassword: "secret1",
	}

	short := base
	short.Password, short.ConfirmPassword = "abc", "abc"
	if _, err := flows.Register(context.Background(), h, short); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}

	mismatch := base
	mismatch.ConfirmPassword = "different"
	if _, err := flows.Register(context.Background(), h, mismatch); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for mismatch, got %v", err)
	}

	missing := base
	missing.Phone = ""
	if _, err := flows.Register(context.Background(), h, missing); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for missing phone, got %v", err)
	}
}

func TestAuthFlows_VerifyPhoneOTP_RejectsIncompleteCode(t *testing.T) {
	api := &stubAuthAPI{
		verifyOTPFn: func(context.Context, string, string) (ports.AuthResult, error) {
			t.Fatalf("backend must not be called for incomplete code")
			return ports.AuthResult{}, nil
		},
	}
	flows := newFlows(api)
	h, _ := newTestHandle()

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		if _, err := flows.VerifyPhoneOTP(context.Background(), h, "+15550100", code); !domain.IsValidation(err) {
			t.Fatalf("code %q: expected validation error, got %v", code, err)
		}
	}
}

func TestAuthFlows_ResendPhoneOTP_CooldownBlocksSecondSend(t *testing.T) {
	sent := 0
	api := &stubAuthAPI{
		requestOTPFn: func(context.Context, string) error {
			sent++
			return nil
		},
	}
	flows := newFlows(api)
	h, _ := newTestHandle()

	if err := flows.ResendPhoneOTP(context.Background(), h, "+15550100"); err != nil {
		t.Fatalf("first resend failed: %v", err)
	}
	err := flows.ResendPhoneOTP(context.Background(), h, "+15550100")
	if !errors.Is(err, domain.ErrResendCooldown) {
		t.Fatalf("expected cooldown error, got %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", sent)
	}
}

type stubResendLimiter struct {
	reserveFn func(ctx context.Context, channel, target string) (int, error)
}

func (s *stubResendLimiter) Reserve(ctx context.Context, channel, target string) (int, error) {
	return s.reserveFn(ctx, channel, target)
}

func TestAuthFlows_ResendPhoneOTP_LimiterOutageStillArmsCooldown(t *testing.T) {
	sent := 0
	api := &stubAuthAPI{
		requestOTPFn: func(context.Context, string) error {
			sent++
			return nil
		},
	}
	limiter := &stubResendLimiter{
		reserveFn: func(context.Context, string, string) (int, error) {
			return 0, errors.New("redis: connection refused")
		},
	}
	flows := NewAuthFlows(api, nil, limiter, NewCooldownSet(), 60, zerolog.Nop())
	h, _ := newTestHandle()

	if err := flows.ResendPhoneOTP(context.Background(), h, "+15550100"); err != nil {
		t.Fatalf("dispatch should go out despite limiter outage, got %v", err)
	}
	if state, _ := flows.ResendState(h, ChannelPhone); state != CooldownActive {
		t.Fatalf("expected armed cooldown after dispatch, got %s", state)
	}

	err := flows.ResendPhoneOTP(context.Background(), h, "+15550100")
	if !errors.Is(err, domain.ErrResendCooldown) {
		t.Fatalf("expected cooldown error on immediate retry, got %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", sent)
	}
}

func TestAuthFlows_ResendPhoneOTP_HeldReservationRefused(t *testing.T) {
	api := &stubAuthAPI{
		requestOTPFn: func(context.Context, string) error {
			t.Fatalf("held reservation must not dispatch")
			return nil
		},
	}
	limiter := &stubResendLimiter{
		reserveFn: func(context.Context, string, string) (int, error) {
			return 42, nil
		},
	}
	flows := NewAuthFlows(api, nil, limiter, NewCooldownSet(), 60, zerolog.Nop())
	h, _ := newTestHandle()

	err := flows.ResendPhoneOTP(context.Background(), h, "+15550100")
	if !errors.Is(err, domain.ErrResendCooldown) {
		t.Fatalf("expected cooldown error, got %v", err)
	}
	// The refused attempt must not burn the in-memory state either.
	if state, _ := flows.ResendState(h, ChannelPhone); state != CooldownIdle {
		t.Fatalf("expected idle after refused reservation, got %s", state)
	}
}

func TestAuthFlows_ResendPhoneOTP_DispatchFailureReturnsToIdle(t *testing.T) {
	calls := 0
	api := &stubAuthAPI{
		requestOTPFn: func(context.Context, string) error {
			calls++
			if calls == 1 {
				return errors.New("sms gateway down")
			}
			return nil
		},
	}
	flows := newFlows(api)
	h, _ := newTestHandle()

	if err := flows.ResendPhoneOTP(context.Background(), h, "+15550100"); !errors.Is(err, domain.ErrBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	// A failed dispatch must not burn the cooldown.
	if err := flows.ResendPhoneOTP(context.Background(), h, "+15550100"); err != nil {
		t.Fatalf("retry after failed dispatch should succeed, got %v", err)
	}
}

func TestAuthFlows_RefreshProfile_PatchesRoleWithoutLogout(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(context.Context, string, string) (ports.AuthResult, error) {
			return ports.AuthResult{
				Success: true,
				Token:   "h.p.s",
				User:    domain.BackendUser{ID: "1", Role: "CITIZEN", Email: "a@b.com"},
			}, nil
		},
		fetchProfileFn: func(_ context.Context, token string) (domain.BackendUser, error) {
			if token != "h.p.s" {
				t.Fatalf("unexpected token: %s", token)
			}
			return domain.BackendUser{ID: "1", Role: "GROUND_WORKER", Email: "a@b.com"}, nil
		},
	}
	flows := newFlows(api)
	h, _ := newTestHandle()

	if _, err := flows.Login(context.Background(), h, "a@b.com", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	before := h.Session.Snapshot().RoleConfirmedAt

	user, err := flows.RefreshProfile(context.Background(), h)
	if err != nil {
		t.Fatalf("RefreshProfile failed: %v", err)
	}
	if user.Role != domain.RoleWorker {
		t.Fatalf("expected role worker after refresh, got %s", user.Role)
	}

	snap := h.Session.Snapshot()
	if !snap.Authenticated || snap.Token != "h.p.s" {
		t.Fatalf("refresh must not touch the token: %+v", snap)
	}
	if snap.RoleConfirmedAt.Before(before) {
		t.Fatalf("expected role confirmation refreshed")
	}
}

func TestAuthFlows_Logout_ClearsStoreAndState(t *testing.T) {
	api := &stubAuthAPI{
		loginFn: func(context.Context, string, string) (ports.AuthResult, error) {
			return ports.AuthResult{
				Success: true,
				Token:   "h.p.s",
				User:    domain.BackendUser{ID: "1", Role: "ADMIN", Email: "a@b.com"},
			}, nil
		},
	}
	flows := newFlows(api)
	h, kv := newTestHandle()

	if _, err := flows.Login(context.Background(), h, "a@b.com", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := flows.Logout(context.Background(), h); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if h.Session.Snapshot().Authenticated {
		t.Fatalf("expected unauthenticated after logout")
	}
	if len(kv.values) != 0 {
		t.Fatalf("expected store cleared after logout, got %v", kv.values)
	}

	// Idempotent: logging out again succeeds.
	if err := flows.Logout(context.Background(), h); err != nil {
		t.Fatalf("second Logout failed: %v", err)
	}
}
