package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps the client backing the session store. Session lookups run on
// every authenticated request, so the commands are tiny and the timeouts
// stay short; a slow redis should fail the request fast rather than stall it.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects with a pool sized for small, frequent session commands.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		ClientName:   "pointage-api",
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return &Redis{Client: client}
}

// Healthy verifies connectivity for the readiness probe.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
