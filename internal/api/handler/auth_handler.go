package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicfix/mobile-gateway/internal/api/metrics"
	"github.com/civicfix/mobile-gateway/internal/core/domain"
	"github.com/civicfix/mobile-gateway/internal/core/service"
	"github.com/civicfix/mobile-gateway/internal/core/session"
)

type AuthHandler struct {
	flows *service.AuthFlows
}

func NewAuthHandler(flows *service.AuthFlows) *AuthHandler {
	return &AuthHandler{flows: flows}
}

// Login authenticates with email and password.
//
// @Summary      Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Device-ID  header    string        true  "Device identity"
// @Param        body         body      loginRequest  true  "Login credentials"
// @Success      200          {object}  sessionResponse
// @Failure      400          {object}  map[string]string
// @Failure      401          {object}  map[string]string
// @Failure      502          {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	handle, err := ctxHandle(c)
	if err != nil {
		return err
	}

	out, err := h.flows.Login(c.Request().Context(), handle, req.Email, req.Password)
	if err != nil {
		metrics.CredentialFlowsTotal.WithLabelValues("login", flowResult(err)).Inc()
		return err
	}
	metrics.CredentialFlowsTotal.WithLabelValues("login", "success").Inc()

	return c.JSON(http.StatusOK, credentialResponse(out))
}

// Register creates an account and logs the session in.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Device-ID  header    string           true  "Device identity"
// @Param        body         body      registerRequest  true  "Registration form"
// @Success      201          {object}  sessionResponse
// @Failure      400          {object}  map[string]string
// @Failure      502          {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	handle, err := ctxHandle(c)
	if err != nil {
		return err
	}

	out, err := h.flows.Register(c.Request().Context(), handle, service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Address:         req.Address,
	})
	if err != nil {
		metrics.CredentialFlowsTotal.WithLabelValues("register", flowResult(err)).Inc()
		return err
	}
	metrics.CredentialFlowsTotal.WithLabelValues("register", "success").Inc()

	return c.JSON(http.StatusCreated, credentialResponse(out))
}

// GoogleLogin exchanges an identity-provider token for a session.
//
// @Summary      Login with a Google identity token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Device-ID  header    string              true  "Device identity"
// @Param        body         body      googleLoginRequest  true  "Identity token"
// @Success      200          {object}  sessionResponse
// @Failure      401          {object}  map[string]string
// @Router       /auth/google [post]
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	var req googleLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	handle, err := ctxHandle(c)
	if err != nil {
		return err
	}

	out, err := h.flows.LoginWithGoogle(c.Request().Context(), handle, req.IDToken)
	if err != nil {
		metrics.CredentialFlowsTotal.WithLabelValues("google", flowResult(err)).Inc()
		return err
	}
	metrics.CredentialFlowsTotal.WithLabelValues("google", "success").Inc()

	return c.JSON(http.StatusOK, credentialResponse(out))
}

// VerifyOTP confirms a 6-digit phone code and logs the session in.
//
// @Summary      Verify a phone OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Device-ID  header    string            true  "Device identity"
// @Param        body         body      otpVerifyRequest  true  "Phone and code"
// @Success      200          {object}  sessionResponse
// @Failure      400          {object}  map[string]string
// @Failure      401          {object}  map[string]string
// @Router       /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req otpVerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	handle, err := ctxHandle(c)
	if err != nil {
		return err
	}

	out, err := h.flows.VerifyPhoneOTP(c.Request().Context(), handle, req.Phone, req.Code)
	if err != nil {
		metrics.CredentialFlowsTotal.WithLabelValues("otp", flowResult(err)).Inc()
		return err
	}
	metrics.CredentialFlowsTotal.WithLabelValues("otp", "success").Inc()

	return c.JSON(http.StatusOK, credentialResponse(out))
}

// VerifyEmail confirms an email verification token and logs the session in.
//
// @Summary      Verify an email token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Device-ID  header    string              true  "Device identity"
// @Param        body         body      emailVerifyRequest  true  "Verification token"
// @Success      200          {object}  sessionResponse
// @Failure      401          {object}  map[string]string
// @Router       /auth/email/verify [post]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req emailVerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	handle, err := ctxHandle(c)
	if err != nil {
		return err
	}

	out, err := h.flows.VerifyEmail(c.Request().Context(), handle, req.Token)
	if err != nil {
		metrics.CredentialFlowsTotal.WithLabelValues("email", flowResult(err)).Inc()
		return err
	}
	metrics.CredentialFlowsTotal.WithLabelValues("email", "success").Inc()

	return c.JSON(http.StatusOK, credentialResponse(out))
}

// ResendOTP redispatches the phone verification code.
//
// @Summary      Resend the phone OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Device-ID  header    string         true  "Device identity"
// @Param        body         body      resendRequest  true  "Phone number"
// @Success      202          {object}  resendStateResponse
// @Failure      429          {object}  map[string]string
// @Router       /auth/otp/resend [post]
func (h *AuthHandler) ResendOTP(c echo.Context) error {
	var req resendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	handle, err := ctxHandle(c)
	if err != nil {
		return err
	}

	if err := h.flows.ResendPhoneOTP(c.Request().Context(), handle, req.Phone); err != nil {
		metrics.ResendsTotal.WithLabelValues(service.ChannelPhone, resendResult(err)).Inc()
		return err
	}
	metrics.ResendsTotal.WithLabelValues(service.ChannelPhone, "sent").Inc()

	return c.JSON(http.StatusAccepted, h.resendState(handle, service.ChannelPhone))
}

// ResendEmail redispatches the email verification message.
//
// @Summary      Resend the verification email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        X-Device-ID  header    string         true  "Device identity"
// @Param        body         body      resendRequest  true  "Email address"
// @Success      202          {object}  resendStateResponse
// @Failure      429          {object}  map[string]string
// @Router       /auth/email/resend [post]
func (h *AuthHandler) ResendEmail(c echo.Context) error {
	var req resendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	handle, err := ctxHandle(c)
	if err != nil {
		return err
	}

	if err := h.flows.ResendEmailVerification(c.Request().Context(), handle, req.Email); err != nil {
		metrics.ResendsTotal.WithLabelValues(service.ChannelEmail, resendResult(err)).Inc()
		return err
	}
	metrics.ResendsTotal.WithLabelValues(service.ChannelEmail, "sent").Inc()

	return c.JSON(http.StatusAccepted, h.resendState(handle, service.ChannelEmail))
}

// ResendState reports the countdown for one channel.
//
// @Summary      Resend countdown state
// @Tags         auth
// @Produce      json
// @Param        X-Device-ID  header    string  true  "Device identity"
// @Param        channel      path      string  true  "phone or email"
// @Success      200          {object}  resendStateResponse
// @Router       /auth/resend/{channel} [get]
func (h *AuthHandler) ResendState(c echo.Context) error {
	channel := c.Param("channel")
	if channel != service.ChannelPhone && channel != service.ChannelEmail {
		return echo.NewHTTPError(http.StatusNotFound, "unknown channel")
	}

	handle, err := ctxHandle(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.resendState(handle, channel))
}

// ForgotPassword asks the platform to start a password reset.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetRequest  true  "Account email"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Router       /auth/password/reset [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.flows.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "reset requested"})
}

// Logout clears the persisted credentials and the in-memory session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Param        X-Device-ID  header    string  true  "Device identity"
// @Success      200          {object}  sessionResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	handle, err := ctxHandle(c)
	if err != nil {
		return err
	}

	if err := h.flows.Logout(c.Request().Context(), handle); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Navigator: string(session.NavigatorAuth)})
}

func (h *AuthHandler) resendState(handle *session.Handle, channel string) resendStateResponse {
	state, remaining := h.flows.ResendState(handle, channel)
	return resendStateResponse{State: string(state), Remaining: remaining}
}

func credentialResponse(out service.Outcome) sessionResponse {
	user := out.User
	return sessionResponse{
		Navigator:      string(session.NavigatorFor(user.Role)),
		User:           &user,
		PersistWarning: out.PersistWarning,
	}
}

// flowResult classifies a credential-flow error for metrics.
func flowResult(err error) string {
	if errors.Is(err, domain.ErrInvalidCredentials) || domain.IsValidation(err) {
		return "rejected"
	}
	return "error"
}

func resendResult(err error) string {
	if errors.Is(err, domain.ErrResendCooldown) {
		return "cooldown"
	}
	return "error"
}
