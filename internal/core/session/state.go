package session

import (
	"sync"
	"time"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
)

// Session is the in-memory authentication state for one device. It is the
// single source of truth consulted by routing; the persisted credential
// record is its durable projection, never the other way around.
//
// A Session is created empty and mutated only by the initializer, the
// credential flows, profile updates, and logout.
type Session struct {
	mu sync.Mutex

	deviceID        string
	authenticated   bool
	user            domain.User
	token           string
	initialized     bool
	roleConfirmedAt time.Time

	initOnce sync.Once
}

// Snapshot is a consistent read of the session taken under the lock.
type Snapshot struct {
	DeviceID        string
	Authenticated   bool
	Initialized     bool
	User            domain.User
	Token           string
	RoleConfirmedAt time.Time
}

func New(deviceID string) *Session {
	return &Session{deviceID: deviceID}
}

func (s *Session) DeviceID() string { return s.deviceID }

// Snapshot returns the current state. Routing decisions must be made from a
// snapshot, not from repeated individual reads.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		DeviceID:        s.deviceID,
		Authenticated:   s.authenticated,
		Initialized:     s.initialized,
		User:            s.user,
		Token:           s.token,
		RoleConfirmedAt: s.roleConfirmedAt,
	}
}

// SetCredentials installs a freshly acquired (token, user) pair. Callers
// must have committed the pair to the credential store first, so a restart
// between the two writes can only lose the in-memory half.
func (s *Session) SetCredentials(token string, user domain.User, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	s.authenticated = true
	s.roleConfirmedAt = at
}

// PatchUser replaces the identity without touching the token; a role change
// here re-routes the client on its next evaluation without a logout.
func (s *Session) PatchUser(user domain.User, confirmedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return
	}
	s.user = user
	s.roleConfirmedAt = confirmedAt
}

// Clear drops the authenticated state. The initialized flag survives: a
// logged-out session is still a fully initialized one.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.user = domain.User{}
	s.token = ""
	s.roleConfirmedAt = time.Time{}
}

func (s *Session) markInitialized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
}

func (s *Session) restore(token string, user domain.User, confirmedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	s.authenticated = true
	s.roleConfirmedAt = confirmedAt
}
