package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicfix/mobile-gateway/internal/core/service"
	"github.com/civicfix/mobile-gateway/internal/core/session"
)

// SessionHandler answers the shell's "what do I mount" probe and serves
// profile refreshes.
type SessionHandler struct {
	flows *service.AuthFlows
}

func NewSessionHandler(flows *service.AuthFlows) *SessionHandler {
	return &SessionHandler{flows: flows}
}

// Describe returns this request's routing decision. The Session middleware
// already ran the restore and the staleness check, so the decision in
// context is current.
//
// @Summary      Current session and navigator
// @Tags         session
// @Produce      json
// @Param        X-Device-ID  header    string  true  "Device identity"
// @Success      200          {object}  sessionResponse
// @Router       /session [get]
func (h *SessionHandler) Describe(c echo.Context) error {
	handle, err := ctxHandle(c)
	if err != nil {
		return err
	}
	decision := ctxDecision(c)

	resp := sessionResponse{
		Navigator:   string(decision.Navigator),
		StaleLogout: decision.StaleLogout,
	}
	if snap := handle.Session.Snapshot(); snap.Authenticated {
		user := snap.User
		resp.User = &user
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshProfile re-reads the profile from the platform, re-confirming the
// role without a new login.
//
// @Summary      Refresh the authenticated profile
// @Tags         session
// @Produce      json
// @Param        X-Device-ID  header    string  true  "Device identity"
// @Success      200          {object}  sessionResponse
// @Failure      401          {object}  map[string]string
// @Router       /session/profile [post]
func (h *SessionHandler) RefreshProfile(c echo.Context) error {
	handle, err := ctxHandle(c)
	if err != nil {
		return err
	}

	user, err := h.flows.RefreshProfile(c.Request().Context(), handle)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{
		Navigator: string(session.NavigatorFor(user.Role)),
		User:      &user,
	})
}
