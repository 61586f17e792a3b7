package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	appmiddleware "github.com/civicfix/mobile-gateway/internal/api/middleware"
	"github.com/civicfix/mobile-gateway/internal/core/session"
)

// ctxHandle extracts the session handle injected by the Session middleware.
// Its absence means the route was wired without the middleware, which is a
// server bug, not a client error.
func ctxHandle(c echo.Context) (*session.Handle, error) {
	h, ok := c.Get(appmiddleware.HandleKey).(*session.Handle)
	if !ok || h == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session not resolved")
	}
	return h, nil
}

// ctxDecision extracts this request's routing decision.
func ctxDecision(c echo.Context) session.Decision {
	decision, _ := c.Get(appmiddleware.DecisionKey).(session.Decision)
	return decision
}

// ctxIdentity returns the authenticated user's id and token, rejecting
// unauthenticated sessions with 401.
func ctxIdentity(c echo.Context) (userID, token string, err error) {
	h, err := ctxHandle(c)
	if err != nil {
		return "", "", err
	}
	snap := h.Session.Snapshot()
	if !snap.Authenticated {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return snap.User.ID, snap.Token, nil
}
