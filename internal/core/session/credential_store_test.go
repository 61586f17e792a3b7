package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civicfix/mobile-gateway/internal/core/domain"
)

// memStorage is an in-memory SecureStorage with optional fault injection.
type memStorage struct {
	values map[string]string
	getErr error
	setErr error
}

func newMemStorage() *memStorage {
	return &memStorage{values: make(map[string]string)}
}

func (m *memStorage) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStorage) Set(_ context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memStorage) Remove(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func testUser() domain.User {
	return domain.User{
		ID:    "u1",
		Name:  "Ada Citizen",
		Email: "ada@example.com",
		Role:  domain.RoleCitizen,
	}
}

func TestCredentialStore_RoundTrip(t *testing.T) {
	store := NewCredentialStore(newMemStorage())
	savedAt := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Save(context.Background(), "h.p.s", testUser(), savedAt); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	record, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if record == nil {
		t.Fatalf("expected record, got absent")
	}
	if record.Token != "h.p.s" {
		t.Fatalf("unexpected token: %q", record.Token)
	}
	if record.User != testUser() {
		t.Fatalf("unexpected user: %+v", record.User)
	}
	if !record.SavedAt.Equal(savedAt) {
		t.Fatalf("unexpected saved_at: %v", record.SavedAt)
	}
}

func TestCredentialStore_ClearIsIdempotent(t *testing.T) {
	store := NewCredentialStore(newMemStorage())

	if err := store.Save(context.Background(), "h.p.s", testUser(), time.Now()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("first Clear returned error: %v", err)
	}
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("second Clear returned error: %v", err)
	}

	record, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected absent after clear, got %+v", record)
	}
}

func TestCredentialStore_PartialPairTreatedAsAbsent(t *testing.T) {
	kv := newMemStorage()
	kv.values[tokenKey] = "h.p.s" // user half missing

	store := NewCredentialStore(kv)
	record, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected partial pair to read as absent, got %+v", record)
	}
	if _, ok := kv.values[tokenKey]; ok {
		t.Fatalf("expected dangling token half to be cleared")
	}
}

func TestCredentialStore_CorruptUserBlobTreatedAsAbsent(t *testing.T) {
	kv := newMemStorage()
	kv.values[tokenKey] = "h.p.s"
	kv.values[userKey] = "{not json"

	store := NewCredentialStore(kv)
	record, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected corrupt record to read as absent, got %+v", record)
	}
	if len(kv.values) != 0 {
		t.Fatalf("expected corrupt record to be cleared, got %v", kv.values)
	}
}

func TestCredentialStore_SaveFailurePropagates(t *testing.T) {
	kv := newMemStorage()
	kv.setErr = errors.New("disk full")

	store := NewCredentialStore(kv)
	err := store.Save(context.Background(), "h.p.s", testUser(), time.Now())
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}
