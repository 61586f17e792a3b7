package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
)

func testHandle() *Handle {
	return &Handle{
		Session: New("device-1"),
		Store:   NewCredentialStore(newMemStorage()),
	}
}

func TestRoleRouter_LoadingWhileUninitialized(t *testing.T) {
	router := NewRoleRouter(DefaultRoleStaleAfter, zerolog.Nop())
	h := testHandle()

	d := router.Evaluate(context.Background(), h, time.Now())
	if d.Navigator != NavigatorLoading {
		t.Fatalf("expected loading before initialization, got %s", d.Navigator)
	}
}

func TestRoleRouter_AuthWhenUnauthenticated(t *testing.T) {
	router := NewRoleRouter(DefaultRoleStaleAfter, zerolog.Nop())
	h := testHandle()
	h.Session.markInitialized()

	d := router.Evaluate(context.Background(), h, time.Now())
	if d.Navigator != NavigatorAuth {
		t.Fatalf("expected auth navigator, got %s", d.Navigator)
	}
}

func TestRoleRouter_NavigatorPerRole(t *testing.T) {
	cases := []struct {
		role domain.Role
		want Navigator
	}{
		{domain.RoleCitizen, NavigatorCitizen},
		{domain.RoleWorker, NavigatorWorker},
		{domain.RoleAdmin, NavigatorAdmin},
	}

	router := NewRoleRouter(DefaultRoleStaleAfter, zerolog.Nop())
	for _, tc := range cases {
		h := testHandle()
		h.Session.markInitialized()
		u := testUser()
		u.Role = tc.role
		h.Session.SetCredentials("h.p.s", u, time.Now())

		if d := router.Evaluate(context.Background(), h, time.Now()); d.Navigator != tc.want {
			t.Fatalf("role %s: expected %s, got %s", tc.role, tc.want, d.Navigator)
		}
	}
}

func TestRoleRouter_StaleRoleForcesLogout(t *testing.T) {
	router := NewRoleRouter(DefaultRoleStaleAfter, zerolog.Nop())
	h := testHandle()
	h.Session.markInitialized()

	now := time.Now()
	h.Session.SetCredentials("h.p.s", testUser(), now.Add(-25*time.Hour))
	if err := h.Store.Save(context.Background(), "h.p.s", testUser(), now.Add(-25*time.Hour)); err != nil {
		t.Fatalf("seed Save failed: %v", err)
	}

	d := router.Evaluate(context.Background(), h, now)
	if d.Navigator != NavigatorAuth || !d.StaleLogout {
		t.Fatalf("expected forced logout, got %+v", d)
	}

	snap := h.Session.Snapshot()
	if snap.Authenticated {
		t.Fatalf("expected session cleared after stale logout")
	}
	record, err := h.Store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected credential store cleared after stale logout")
	}
}

func TestRoleRouter_FreshRoleStaysAuthenticated(t *testing.T) {
	router := NewRoleRouter(DefaultRoleStaleAfter, zerolog.Nop())
	h := testHandle()
	h.Session.markInitialized()

	now := time.Now()
	h.Session.SetCredentials("h.p.s", testUser(), now.Add(-23*time.Hour))

	d := router.Evaluate(context.Background(), h, now)
	if d.Navigator != NavigatorCitizen || d.StaleLogout {
		t.Fatalf("expected citizen navigator without logout, got %+v", d)
	}
}

func TestRoleRouter_RoleChangeRemountsWithoutLogout(t *testing.T) {
	router := NewRoleRouter(DefaultRoleStaleAfter, zerolog.Nop())
	h := testHandle()
	h.Session.markInitialized()
	h.Session.SetCredentials("h.p.s", testUser(), time.Now())

	if d := router.Evaluate(context.Background(), h, time.Now()); d.Navigator != NavigatorCitizen {
		t.Fatalf("expected citizen first, got %s", d.Navigator)
	}

	promoted := testUser()
	promoted.Role = domain.RoleWorker
	h.Session.PatchUser(promoted, time.Now())

	d := router.Evaluate(context.Background(), h, time.Now())
	if d.Navigator != NavigatorWorker {
		t.Fatalf("expected worker after role patch, got %s", d.Navigator)
	}
	if !h.Session.Snapshot().Authenticated {
		t.Fatalf("role change must not log the session out")
	}
}
