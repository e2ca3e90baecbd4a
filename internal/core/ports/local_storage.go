package ports

import "context"

// Keys used in local storage.
const (
	SessionUserKey         = "assignment-system-user"
	CompletedSubmissionKey = "completed-submissions"
)

// LocalStorage is a small key/value store holding raw JSON, scoped to one
// session context or one student. Get reports found=false for missing keys.
type LocalStorage interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// StorageProvider hands out LocalStorage scoped to a namespace.
type StorageProvider interface {
	Scope(namespace string) LocalStorage
}
