package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/dsg/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "dsg:"

// Store implements ports.FingerprintStore on a Redis hash, so several
// engines watching the same server share change detection.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store or a StatusPublisher.
type Option func(*options)

type options struct {
	prefix string
	ttl    time.Duration
}

// WithPrefix overrides the key prefix (default: "dsg:").
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithTTL expires written keys after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

func resolve(opts []Option) options {
	o := options{prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New connects to addr and returns a Store.
func New(addr string, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	o := resolve(opts)
	return &Store{client: client, prefix: o.prefix, ttl: o.ttl}
}

func (s *Store) key() string {
	return s.prefix + "fingerprints"
}

// Lookup returns the digest stored for key.
func (s *Store) Lookup(ctx context.Context, key string) (string, error) {
	digest, err := s.client.HGet(ctx, s.key(), key).Result()
	if errors.Is(err, backend.Nil) {
		return "", domain.ErrFingerprintNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read fingerprint: %w", err)
	}
	return digest, nil
}

// Store records digest under key and refreshes the TTL of the whole set.
func (s *Store) Store(ctx context.Context, key, digest string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(), key, digest)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store fingerprint: %w", err)
	}
	return nil
}

// Forget drops every fingerprint.
func (s *Store) Forget(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("failed to forget fingerprints: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
