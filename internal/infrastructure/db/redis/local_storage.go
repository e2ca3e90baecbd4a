package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

// LocalStorage keeps session and student state in Redis so every portal
// instance sees the same values.
// Key format: portal:<namespace>:<key>
type LocalStorage struct {
	client *redis.Client
	ttls   []namespaceTTL
}

type namespaceTTL struct {
	prefix string
	ttl    time.Duration
}

var _ ports.StorageProvider = (*LocalStorage)(nil)

// Option customises a LocalStorage.
type Option func(*LocalStorage)

// WithNamespaceTTL expires values of namespaces starting with prefix after
// ttl. The first matching prefix wins.
func WithNamespaceTTL(prefix string, ttl time.Duration) Option {
	return func(s *LocalStorage) {
		s.ttls = append(s.ttls, namespaceTTL{prefix: prefix, ttl: ttl})
	}
}

// NewLocalStorage wraps client. Namespaces without a TTL option keep their
// values until removed.
func NewLocalStorage(client *redis.Client, opts ...Option) *LocalStorage {
	s := &LocalStorage{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scope returns the storage of one namespace.
func (s *LocalStorage) Scope(namespace string) ports.LocalStorage {
	return &scope{parent: s, namespace: namespace, ttl: s.ttlFor(namespace)}
}

func (s *LocalStorage) ttlFor(namespace string) time.Duration {
	for _, t := range s.ttls {
		if strings.HasPrefix(namespace, t.prefix) {
			return t.ttl
		}
	}
	return 0
}

type scope struct {
	parent    *LocalStorage
	namespace string
	ttl       time.Duration
}

func (s *scope) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.parent.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage get: %w", err)
	}
	return v, true, nil
}

func (s *scope) Set(ctx context.Context, key string, value []byte) error {
	if err := s.parent.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("storage set: %w", err)
	}
	return nil
}

func (s *scope) Remove(ctx context.Context, key string) error {
	if err := s.parent.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("storage remove: %w", err)
	}
	return nil
}

func (s *scope) key(key string) string {
	return fmt.Sprintf("portal:%s:%s", s.namespace, key)
}
