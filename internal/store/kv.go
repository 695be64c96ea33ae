// Package store persists pipeline records in a key-value store.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("not found")

// Entry is a key and its value.
type Entry struct {
	Key   string
	Value []byte
}

// UpdateFunc computes a new value from the current one. exists is false when
// the key has no value yet.
type UpdateFunc func(old []byte, exists bool) ([]byte, error)

// KV is the storage abstraction the pipeline writes through. Keys are
// slash-separated paths such as "sheet/acme/2024-03".
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// List returns every entry whose key starts with prefix, sorted by key.
	List(ctx context.Context, prefix string) ([]Entry, error)
	// Update applies fn atomically with respect to other Updates of key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
