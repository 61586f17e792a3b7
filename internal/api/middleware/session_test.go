package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/civicfix/mobile-gateway/internal/core/ports"
	"github.com/civicfix/mobile-gateway/internal/core/session"
)

type memStorage struct {
	values map[string]string
}

func (m *memStorage) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStorage) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memStorage) Remove(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func newSessionMW() echo.MiddlewareFunc {
	factory := func(string) ports.SecureStorage {
		return &memStorage{values: make(map[string]string)}
	}
	return Session(
		session.NewRegistry(factory, time.Hour),
		session.NewInitializer(zerolog.Nop()),
		session.NewRoleRouter(0, zerolog.Nop()),
	)
}

func TestSession_RequiresDeviceHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := newSessionMW()(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestSession_InjectsHandleAndDecision(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DeviceHeader, "device-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := newSessionMW()(func(c echo.Context) error {
		called = true
		h, ok := c.Get(HandleKey).(*session.Handle)
		if !ok || h == nil {
			t.Fatalf("handle not injected")
		}
		snap := h.Session.Snapshot()
		if !snap.Initialized || snap.Authenticated {
			t.Fatalf("fresh device should be initialized and logged out: %+v", snap)
		}
		decision, ok := c.Get(DecisionKey).(session.Decision)
		if !ok || decision.Navigator != session.NavigatorAuth {
			t.Fatalf("expected auth navigator, got %+v", decision)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestSession_SameDeviceSharesSession(t *testing.T) {
	e := echo.New()
	mw := newSessionMW()

	var first *session.Handle
	run := func(capture func(h *session.Handle)) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(DeviceHeader, "device-1")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		handler := mw(func(c echo.Context) error {
			capture(c.Get(HandleKey).(*session.Handle))
			return c.NoContent(http.StatusOK)
		})
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
	}

	run(func(h *session.Handle) { first = h })
	run(func(h *session.Handle) {
		if h != first {
			t.Fatalf("expected the same handle across requests")
		}
	})
}
