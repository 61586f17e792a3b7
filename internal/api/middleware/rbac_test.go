package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/civicfix/mobile-gateway/internal/core/session"
)

func runRBAC(t *testing.T, decision session.Decision, allowed ...session.Navigator) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(DecisionKey, decision)

	called := false
	handler := RequireNavigator(allowed...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func TestRequireNavigator_Allows(t *testing.T) {
	rec, called := runRBAC(t,
		session.Decision{Navigator: session.NavigatorAdmin},
		session.NavigatorAdmin,
	)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got code=%d called=%v", rec.Code, called)
	}
}

func TestRequireNavigator_ForbidsWrongRole(t *testing.T) {
	rec, called := runRBAC(t,
		session.Decision{Navigator: session.NavigatorCitizen},
		session.NavigatorAdmin,
	)
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireNavigator_UnauthenticatedGets401(t *testing.T) {
	rec, called := runRBAC(t,
		session.Decision{Navigator: session.NavigatorAuth},
		session.NavigatorCitizen,
	)
	if called {
		t.Fatalf("should not reach next handler")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
