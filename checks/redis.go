package checks

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Redis returns a check named "redis" that sends PING.
func Redis(client redis.UniversalClient, opts ...Option) *PingChecker {
	var ping PingFunc
	if client != nil {
		ping = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return Ping("redis", ping, opts...)
}
