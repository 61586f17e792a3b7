package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResendLimiter is the durable half of the verification resend cooldown.
// The in-memory countdown dies with the process; this window does not, so a
// gateway restart cannot be used to hammer the SMS or email dispatcher.
// Targets are digested before keying so phone numbers and email addresses
// never land in Redis in the clear.
// Key format: resend:<channel>:<target_digest>
type ResendLimiter struct {
	client *redis.Client
	window time.Duration
}

func NewResendLimiter(client *redis.Client, windowSeconds int) *ResendLimiter {
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return &ResendLimiter{client: client, window: time.Duration(windowSeconds) * time.Second}
}

// Reserve claims the resend window for target. When the window is already
// held it returns the seconds remaining until the next send is allowed.
func (l *ResendLimiter) Reserve(ctx context.Context, channel, target string) (int, error) {
	key := fmt.Sprintf("resend:%s:%s", channel, digest(target))

	ok, err := l.client.SetNX(ctx, key, "1", l.window).Result()
	if err != nil {
		return 0, fmt.Errorf("resend reserve: %w", err)
	}
	if ok {
		return 0, nil
	}

	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("resend ttl: %w", err)
	}
	retryAfter := int(ttl / time.Second)
	if retryAfter < 1 {
		retryAfter = 1
	}
	return retryAfter, nil
}
