package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/civicfix/mobile-gateway/internal/core/session"
)

// RequireNavigator gates a route group on the navigator the session mounted.
// An unauthenticated session gets 401; an authenticated session holding the
// wrong role gets 403.
func RequireNavigator(allowed ...session.Navigator) echo.MiddlewareFunc {
	allowedSet := make(map[session.Navigator]struct{}, len(allowed))
	for _, nav := range allowed {
		allowedSet[nav] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision, _ := c.Get(DecisionKey).(session.Decision)
			if _, ok := allowedSet[decision.Navigator]; ok {
				return next(c)
			}

			switch decision.Navigator {
			case session.NavigatorAuth, session.NavigatorLoading:
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			default:
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
		}
	}
}
