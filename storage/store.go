package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing is stored at a path.
var ErrNotFound = errors.New("no value stored at path")

// Store holds the daemon's state as a single JSON document. Keys are gjson
// paths into that document.
type Store interface {
	Set(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error

	Restore(values []byte) error
	Backup() ([]byte, error)

	// ListenToUpdates returns a channel that receives every Set. The channel
	// is closed when the store is closed.
	ListenToUpdates() <-chan *Update

	Close() error
}

// Update is the new value written to a key.
type Update struct {
	Key   string
	Value []byte
}
