package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/civicfix/mobile-gateway/internal/api/metrics"
	"github.com/civicfix/mobile-gateway/internal/core/session"
)

// DeviceHeader carries the installation identity the mobile shell generates
// on first launch. Every session-scoped route requires it.
const DeviceHeader = "X-Device-ID"

const (
	// HandleKey is the context key under which the device's session handle
	// is injected.
	HandleKey = "session_handle"
	// DecisionKey is the context key for the routing decision made for this
	// request.
	DecisionKey = "session_decision"
)

// Session resolves the device's session, runs the one-time restore, and
// evaluates the navigator for this request. Handlers downstream read the
// handle and decision from context; they never touch the registry directly.
func Session(reg *session.Registry, init *session.Initializer, router *session.RoleRouter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deviceID := c.Request().Header.Get(DeviceHeader)
			if deviceID == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "missing device identity")
			}

			ctx := c.Request().Context()
			h := reg.Handle(deviceID)

			// Only actual restore runs are counted; an already-initialized
			// session passes through here on every request.
			if result := init.Run(ctx, h.Session, h.Store); result != session.RestoreAlreadyInitialized {
				metrics.SessionRestoresTotal.WithLabelValues(string(result)).Inc()
			}

			decision := router.Evaluate(ctx, h, time.Now().UTC())
			metrics.NavigatorDecisionsTotal.WithLabelValues(string(decision.Navigator)).Inc()
			if decision.StaleLogout {
				metrics.StaleLogoutsTotal.Inc()
			}

			c.Set(HandleKey, h)
			c.Set(DecisionKey, decision)

			return next(c)
		}
	}
}
