package domain

import (
	"strings"
	"time"
)

// placeholderTokenPrefixes are sentinel values written by debug builds and
// stubbed sign-in paths of the mobile app. A persisted token carrying one of
// these is never replayed against the backend.
var placeholderTokenPrefixes = []string{
	"mock.",
	"test-token",
	"placeholder",
}

// CredentialRecord is the durable (token, user) pair persisted across app
// restarts. Token and user are written and cleared together; a record with
// only one half present is corrupt and must be treated as absent.
type CredentialRecord struct {
	Token string `json:"token"`
	User  User   `json:"user"`
	// SavedAt is the time the record was written (login time). The role
	// staleness check falls back to it when no fresher confirmation exists.
	SavedAt time.Time `json:"saved_at"`
}

// ValidateTokenShape performs the structural check applied before a persisted
// token is reused: three non-empty dot-separated segments, and not a known
// placeholder. This is a shape check, not signature verification; the backend
// remains the authority on token validity.
func ValidateTokenShape(token string) error {
	if token == "" {
		return ErrMalformedToken
	}
	for _, prefix := range placeholderTokenPrefixes {
		if strings.HasPrefix(token, prefix) {
			return ErrMalformedToken
		}
	}
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return ErrMalformedToken
	}
	for _, s := range segments {
		if s == "" {
			return ErrMalformedToken
		}
	}
	return nil
}
