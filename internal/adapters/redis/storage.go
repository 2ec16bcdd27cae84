package redis

// Package redis provides Redis-based adapters for the frontsurete system.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is the sliding lifetime of an idle client namespace.
const DefaultTTL = 30 * 24 * time.Hour

// Storage is one client's durable key/value namespace stored in Redis.
// Every read and write refreshes the TTL of the touched key, so only abandoned browsers age out.
type Storage struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// StorageOptions configures a Storage namespace.
type StorageOptions struct {
	Client redis.UniversalClient
	// Prefix is prepended to every key, e.g. "fs:client:".
	Prefix string
	// ClientID scopes the namespace. Required.
	ClientID string
	TTL      time.Duration
}

// NewStorage creates a Redis-backed storage namespace for a single client.
func NewStorage(opts StorageOptions) (*Storage, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if opts.ClientID == "" {
		return nil, errors.New("client ID cannot be empty")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "fs:client:"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Storage{
		client: opts.Client,
		// Hash tag keeps a namespace in one cluster slot so multi-key DEL works.
		prefix: prefix + "{" + opts.ClientID + "}:",
		ttl:    ttl,
	}, nil
}

// Namespace returns the key prefix owned by this storage.
func (s *Storage) Namespace() string { return s.prefix }

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}

	val, err := s.client.GetEx(ctx, s.prefix+key, s.ttl).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("storage key cannot be empty")
	}
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, keys ...string) error {
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			full = append(full, s.prefix+k)
		}
	}
	if len(full) == 0 {
		return nil // Nothing to delete
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
