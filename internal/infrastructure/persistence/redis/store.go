// Package redis implements the key-value DataStore on a Redis server, so the
// persisted records can outlive the host process and be shared with tooling.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/levelup-fitness/levelup-core/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Redis connection configuration.
type Config struct {
	// Host is the Redis server hostname.
	Host string

	// Port is the Redis server port.
	Port int

	// Password is the Redis authentication password (empty if no auth).
	Password string

	// DB is the Redis database number (0-15).
	DB int

	// KeyPrefix is prepended to every record key, e.g. "levelup:".
	KeyPrefix string

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int

	// MaxRetries is the number of application-level attempts per command.
	MaxRetries int

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	WriteTimeout time.Duration
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		KeyPrefix:    "levelup:",
		PoolSize:     4,
		MinIdleConns: 1,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrConnection is returned when the initial ping fails.
	ErrConnection = errors.New("redis store: connection failed")

	// ErrKeyEmpty is returned when an empty key is provided.
	ErrKeyEmpty = errors.New("redis store: key cannot be empty")
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store is a kv.DataStore backed by Redis string values without expiry.
type Store struct {
	client  *redis.Client
	prefix  string
	retrier *retry.Retrier
}

// NewStore connects to Redis and verifies the connection. opts tune the
// retrier on top of cfg.MaxRetries.
func NewStore(cfg Config, opts ...retry.Option) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   -1,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	opts = append([]retry.Option{retry.WithMaxAttempts(cfg.MaxRetries)}, opts...)
	return NewStoreFromClient(client, cfg.KeyPrefix, opts...), nil
}

// NewStoreFromClient wraps an existing client. Tests pass a redismock client.
func NewStoreFromClient(client *redis.Client, prefix string, opts ...retry.Option) *Store {
	return &Store{
		client:  client,
		prefix:  prefix,
		retrier: retry.New(opts...),
	}
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get implements kv.DataStore. A missing key is reported as absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrKeyEmpty
	}

	var found bool
	value, err := retry.DoWithData(ctx, s.retrier, func(ctx context.Context) (string, error) {
		v, err := s.client.Get(ctx, s.prefix+key).Result()
		if errors.Is(err, redis.Nil) {
			found = false
			return "", nil
		}
		if err != nil {
			return "", err
		}
		found = true
		return v, nil
	})
	if err != nil {
		return "", false, err
	}
	return value, found, nil
}

// Set implements kv.DataStore.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrKeyEmpty
	}
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		return s.client.Set(ctx, s.prefix+key, value, 0).Err()
	})
}

// Remove implements kv.DataStore.
func (s *Store) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyEmpty
	}
	return s.retrier.Do(ctx, func(ctx context.Context) error {
		return s.client.Del(ctx, s.prefix+key).Err()
	})
}
