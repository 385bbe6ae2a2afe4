// Package kvstore manages the Redis client used by the redis history backend.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"github.com/JaimeStill/attest/pkg/lifecycle"
)

// ErrNotReady indicates Redis did not answer PING during startup.
var ErrNotReady = errors.New("redis not ready")

// System owns a Redis client and its lifecycle.
type System interface {
	Client() *redis.Client
	Prefix() string
	Start(lc *lifecycle.Coordinator) error
}

type kv struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// New creates the client. No connection is made until Start or first use.
func New(cfg *Config, logger *slog.Logger) System {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeoutDuration(),
	})

	return &kv{
		client: client,
		prefix: cfg.Prefix,
		logger: logger.With("system", "redis"),
	}
}

func (k *kv) Client() *redis.Client {
	return k.client
}

func (k *kv) Prefix() string {
	return k.prefix
}

func (k *kv) Start(lc *lifecycle.Coordinator) error {
	k.logger.Info("starting redis connection", "addr", k.client.Options().Addr)

	lc.OnStartup("redis", func(ctx context.Context) error {
		if err := k.client.Ping(ctx).Err(); err != nil {
			k.logger.Error("redis ping failed", "error", err)
			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}
		k.logger.Info("redis connection established")
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := k.client.Close(); err != nil {
			k.logger.Error("redis close failed", "error", err)
			return
		}
		k.logger.Info("redis connection closed")
	})

	return nil
}
