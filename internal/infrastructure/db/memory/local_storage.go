package memory

import (
	"context"
	"sync"

	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

// LocalStorage is a process-local key/value store. Values are copied on the
// way in and out.
type LocalStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ ports.StorageProvider = (*LocalStorage)(nil)

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{values: make(map[string][]byte)}
}

func (s *LocalStorage) Scope(namespace string) ports.LocalStorage {
	return &scope{parent: s, prefix: namespace + "\x00"}
}

type scope struct {
	parent *LocalStorage
	prefix string
}

func (s *scope) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()
	v, ok := s.parent.values[s.prefix+key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *scope) Set(_ context.Context, key string, value []byte) error {
	s.parent.mu.Lock()
	s.parent.values[s.prefix+key] = append([]byte(nil), value...)
	s.parent.mu.Unlock()
	return nil
}

func (s *scope) Remove(_ context.Context, key string) error {
	s.parent.mu.Lock()
	delete(s.parent.values, s.prefix+key)
	s.parent.mu.Unlock()
	return nil
}
