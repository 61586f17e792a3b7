package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
)

// Navigator identifies which top-level flow the mobile shell should mount.
type Navigator string

const (
	NavigatorLoading Navigator = "loading"
	NavigatorAuth    Navigator = "auth"
	NavigatorCitizen Navigator = "citizen"
	NavigatorWorker  Navigator = "worker"
	NavigatorAdmin   Navigator = "admin"
)

// navigatorByRole maps an authenticated role to its navigator.
var navigatorByRole = map[domain.Role]Navigator{
	domain.RoleCitizen: NavigatorCitizen,
	domain.RoleWorker:  NavigatorWorker,
	domain.RoleAdmin:   NavigatorAdmin,
}

// NavigatorFor returns the navigator an authenticated role mounts.
func NavigatorFor(role domain.Role) Navigator {
	return navigatorByRole[role]
}

// DefaultRoleStaleAfter is the window after which an unconfirmed role forces
// a logout. It is a conservative re-auth heuristic, independent of any
// expiry claim inside the token.
const DefaultRoleStaleAfter = 24 * time.Hour

// Decision is one routing evaluation.
type Decision struct {
	Navigator Navigator
	// StaleLogout is set when this evaluation itself forced the logout.
	StaleLogout bool
}

// RoleRouter turns session state into the mounted navigator:
//
//	uninitialized        → loading (never the auth flow, to avoid a flash
//	                       of the login screen for a restored user)
//	unauthenticated      → auth
//	authenticated(role)  → the role's navigator, unless the role
//	                       confirmation is stale, which forces a logout
//
// Evaluation is run on every request that routes, so a role change patched
// into the session takes effect on the very next pass.
type RoleRouter struct {
	staleAfter time.Duration
	log        zerolog.Logger
}

func NewRoleRouter(staleAfter time.Duration, log zerolog.Logger) *RoleRouter {
	if staleAfter <= 0 {
		staleAfter = DefaultRoleStaleAfter
	}
	return &RoleRouter{staleAfter: staleAfter, log: log}
}

// Evaluate computes the navigator for h at time now, applying the staleness
// check. A stale session is logged out: store cleared first, then state.
func (r *RoleRouter) Evaluate(ctx context.Context, h *Handle, now time.Time) Decision {
	snap := h.Session.Snapshot()

	if !snap.Initialized {
		return Decision{Navigator: NavigatorLoading}
	}
	if !snap.Authenticated {
		return Decision{Navigator: NavigatorAuth}
	}

	confirmedAt := snap.RoleConfirmedAt
	if !confirmedAt.IsZero() && now.Sub(confirmedAt) > r.staleAfter {
		if err := h.Store.Clear(ctx); err != nil {
			r.log.Warn().Err(err).Str("device_id", snap.DeviceID).
				Msg("failed to clear credentials during staleness logout")
		}
		h.Session.Clear()
		r.log.Info().
			Str("device_id", snap.DeviceID).
			Str("user_id", snap.User.ID).
			Time("role_confirmed_at", confirmedAt).
			Msg("role confirmation stale, forcing logout")
		return Decision{Navigator: NavigatorAuth, StaleLogout: true}
	}

	return Decision{Navigator: navigatorByRole[snap.User.Role]}
}
