// Package store is the persistence layer: a key-value adapter holding a
// small number of independently written JSON values. The board keeps the
// authoritative state in memory and writes each slice back on every
// change, so the adapter needs nothing beyond Get/Set — no transactions
// across keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys for the three persisted state slices.
const (
	KeyJobs      = "jobboard:jobs"
	KeyProfile   = "jobboard:profile"
	KeyFavorites = "jobboard:favorites"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// KV is the minimal contract a storage backend must satisfy.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// SaveError wraps a backend write failure. The board keeps the attempted
// change in memory when it sees one, so callers can surface a notice and
// let the user retry instead of failing the whole operation.
type SaveError struct {
	Key string
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving %s: %v", e.Key, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// Load reads and decodes the JSON value stored under key into out.
// Returns ErrNotFound when the key is absent; a decode error means the
// payload is corrupt and the caller should fall back to its default.
func Load(ctx context.Context, kv KV, key string, out any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// Save encodes value as JSON and writes it under key. Write failures come
// back as *SaveError.
func Save(ctx context.Context, kv KV, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, raw); err != nil {
		return &SaveError{Key: key, Err: err}
	}
	return nil
}
