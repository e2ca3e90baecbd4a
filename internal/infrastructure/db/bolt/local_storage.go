// Package bolt persists local storage in a single bbolt file, for
// single-node deployments that must survive restarts.
package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

var bucketLocalStorage = []byte("LocalStorage")

// LocalStorage stores every namespace in one bucket under "<namespace>/<key>".
type LocalStorage struct {
	db *bbolt.DB
}

var _ ports.StorageProvider = (*LocalStorage)(nil)

// Open opens (or creates) the database file at path and its bucket.
func Open(path string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketLocalStorage)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &LocalStorage{db: db}, nil
}

// Close releases the database file lock.
func (s *LocalStorage) Close() error {
	return s.db.Close()
}

// Ping reports whether the database can still serve reads.
func (s *LocalStorage) Ping() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketLocalStorage) == nil {
			return fmt.Errorf("bucket %s not found", bucketLocalStorage)
		}
		return nil
	})
}

func (s *LocalStorage) Scope(namespace string) ports.LocalStorage {
	return &scope{db: s.db, prefix: namespace + "/"}
}

type scope struct {
	db     *bbolt.DB
	prefix string
}

func (s *scope) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var (
		out   []byte
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketLocalStorage).Get([]byte(s.prefix + key))
		if v != nil {
			// v is only valid for the life of the transaction.
			out = append([]byte{}, v...)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("storage get: %w", err)
	}
	return out, found, nil
}

func (s *scope) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLocalStorage).Put([]byte(s.prefix+key), value)
	})
	if err != nil {
		return fmt.Errorf("storage set: %w", err)
	}
	return nil
}

func (s *scope) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLocalStorage).Delete([]byte(s.prefix + key))
	})
	if err != nil {
		return fmt.Errorf("storage remove: %w", err)
	}
	return nil
}
