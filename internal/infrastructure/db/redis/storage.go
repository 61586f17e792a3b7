package redis

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/sha3"

	"github.com/civicfix/mobile-gateway/internal/core/ports"
)

// SecureStorage is the Redis-backed credential vault. Each device gets its
// own key namespace derived from a SHA3 digest of the device identifier, so
// raw device IDs never appear in the key space.
// Key format: vault:<device_digest>:<key>
type SecureStorage struct {
	client *redis.Client
	prefix string
}

// NewStorageFactory returns a ports.StorageFactory producing per-device
// vaults on the shared client.
func NewStorageFactory(client *redis.Client) ports.StorageFactory {
	return func(deviceID string) ports.SecureStorage {
		return &SecureStorage{
			client: client,
			prefix: "vault:" + digest(deviceID) + ":",
		}
	}
}

func (s *SecureStorage) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("vault get: %w", err)
	}
	return val, true, nil
}

func (s *SecureStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("vault set: %w", err)
	}
	return nil
}

func (s *SecureStorage) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("vault remove: %w", err)
	}
	return nil
}

func digest(s string) string {
	sum := sha3.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
