package ports

import "context"

// SecureStorage is the device-scoped key-value storage collaborator: string
// keys, string values, durable across restarts. Structured values are
// JSON-encoded by the caller. Implementations must report availability
// failures (full disk, lost connection) as errors rather than dropping
// writes silently.
type SecureStorage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// StorageFactory yields the SecureStorage bound to one device's namespace.
type StorageFactory func(deviceID string) SecureStorage
