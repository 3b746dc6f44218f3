package health

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Pinger probes the Postgres pool and Redis client backing the service.
type Pinger struct {
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

func (p Pinger) PingDB(ctx context.Context, timeout time.Duration) error {
	if p.Pool == nil {
		return errors.New("database pool not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Pool.Ping(ctx)
}

func (p Pinger) PingRedis(ctx context.Context, timeout time.Duration) error {
	if p.Redis == nil {
		return errors.New("redis client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Redis.Ping(ctx).Err()
}
