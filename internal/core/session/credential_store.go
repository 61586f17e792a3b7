package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
	"github.com/civicfix/mobile-gateway/internal/core/ports"
)

const (
	tokenKey = "auth.token"
	userKey  = "auth.user"
)

// persistedUser is the stored half that travels with the token. SavedAt is
// kept here rather than in a third key so the pair stays a pair.
type persistedUser struct {
	User    domain.User `json:"user"`
	SavedAt time.Time   `json:"saved_at"`
}

// CredentialStore persists the (token, user) credential record for one
// device on top of the secure key-value storage collaborator. The two
// halves are written and cleared together; a partial pair is corruption and
// is self-healed to absent on load.
type CredentialStore struct {
	kv ports.SecureStorage
}

func NewCredentialStore(kv ports.SecureStorage) *CredentialStore {
	return &CredentialStore{kv: kv}
}

// Save persists token and user together. The token is written last so an
// interrupted save leaves a user-only partial pair, which Load discards.
func (c *CredentialStore) Save(ctx context.Context, token string, user domain.User, at time.Time) error {
	encoded, err := json.Marshal(persistedUser{User: user, SavedAt: at.UTC()})
	if err != nil {
		return fmt.Errorf("encode credential record: %w", err)
	}

	if err := c.kv.Set(ctx, userKey, string(encoded)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if err := c.kv.Set(ctx, tokenKey, token); err != nil {
		// Best effort: do not leave a dangling user half behind.
		_ = c.kv.Remove(ctx, userKey)
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// Load returns the persisted credential record, or nil when absent. A pair
// with only one half present, or an undecodable user blob, is cleared and
// reported as absent; callers never observe a partial record.
func (c *CredentialStore) Load(ctx context.Context) (*domain.CredentialRecord, error) {
	token, tokenOK, err := c.kv.Get(ctx, tokenKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	rawUser, userOK, err := c.kv.Get(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	if !tokenOK || !userOK {
		if tokenOK || userOK {
			_ = c.Clear(ctx)
		}
		return nil, nil
	}

	var stored persistedUser
	if err := json.Unmarshal([]byte(rawUser), &stored); err != nil || stored.User.ID == "" {
		_ = c.Clear(ctx)
		return nil, nil
	}

	return &domain.CredentialRecord{
		Token:   token,
		User:    stored.User,
		SavedAt: stored.SavedAt,
	}, nil
}

// Clear removes both halves. Clearing an already-empty store succeeds.
func (c *CredentialStore) Clear(ctx context.Context) error {
	if err := c.kv.Remove(ctx, tokenKey); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if err := c.kv.Remove(ctx, userKey); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}
