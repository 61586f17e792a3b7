package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
)

// RestoreResult reports how an initialization run concluded.
type RestoreResult string

const (
	RestoreEmpty        RestoreResult = "empty"
	RestoreRestored     RestoreResult = "restored"
	RestoreInvalidToken RestoreResult = "invalid_token"
	RestoreStorageError RestoreResult = "storage_error"
	// RestoreAlreadyInitialized is reported on every call after the first;
	// no restore ran.
	RestoreAlreadyInitialized RestoreResult = "already_initialized"
)

// Initializer restores a session from the credential store exactly once per
// session lifetime. Every outcome, including a storage failure, terminates
// with the session marked initialized: a failed restore degrades to logged
// out, never to a session stuck before its first routing decision.
type Initializer struct {
	log zerolog.Logger
}

func NewInitializer(log zerolog.Logger) *Initializer {
	return &Initializer{log: log}
}

// Run performs the restore for s from store. Subsequent calls are no-ops
// reporting RestoreAlreadyInitialized, so a user-triggered login can never
// race a stale restore.
func (i *Initializer) Run(ctx context.Context, s *Session, store *CredentialStore) RestoreResult {
	result := RestoreAlreadyInitialized
	s.initOnce.Do(func() {
		result = i.restore(ctx, s, store)
		s.markInitialized()
	})
	return result
}

func (i *Initializer) restore(ctx context.Context, s *Session, store *CredentialStore) RestoreResult {
	record, err := store.Load(ctx)
	if err != nil {
		i.log.Warn().Err(err).Str("device_id", s.DeviceID()).
			Msg("credential load failed, starting logged out")
		return RestoreStorageError
	}
	if record == nil {
		return RestoreEmpty
	}

	if err := domain.ValidateTokenShape(record.Token); err != nil {
		// Self-heal: drop the malformed record silently, log only.
		if clearErr := store.Clear(ctx); clearErr != nil {
			i.log.Warn().Err(clearErr).Str("device_id", s.DeviceID()).
				Msg("failed to clear malformed credential record")
		}
		i.log.Info().Str("device_id", s.DeviceID()).
			Msg("discarded malformed persisted token")
		return RestoreInvalidToken
	}

	confirmedAt := record.SavedAt
	if confirmedAt.IsZero() {
		confirmedAt = time.Now().UTC()
	}
	s.restore(record.Token, record.User, confirmedAt)

	logEvent := i.log.Info().
		Str("device_id", s.DeviceID()).
		Str("user_id", record.User.ID).
		Str("role", string(record.User.Role))
	// Best-effort claims peek for the log line; shape validation above is
	// the gate, not this parse.
	if claims := peekClaims(record.Token); claims != nil {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			logEvent = logEvent.Str("token_sub", sub)
		}
	}
	logEvent.Msg("session restored")

	return RestoreRestored
}

func peekClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
