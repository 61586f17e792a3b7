package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestConnect_AppliesGatewayDefaults(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	defer func() { _ = client.Close() }()

	opts := client.Options()
	if opts.PoolSize != defaultPoolSize {
		t.Fatalf("expected default pool size %d, got %d", defaultPoolSize, opts.PoolSize)
	}
	if opts.ReadTimeout != defaultTimeout || opts.WriteTimeout != defaultTimeout {
		t.Fatalf("expected default timeouts, got read=%v write=%v", opts.ReadTimeout, opts.WriteTimeout)
	}
}

func TestConnect_UnreachableServerRejected(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := Connect(context.Background(), Config{Addr: addr, Timeout: 500 * time.Millisecond}); err == nil {
		t.Fatalf("expected connection error for closed server")
	}
}
