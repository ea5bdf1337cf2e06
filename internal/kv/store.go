// Package kv provides the persistent key-value store the repository is
// built on. Keys are opaque strings, values are raw bytes; a missing key
// is a valid state, not an error.
package kv

import "context"

// Store is the key-value persistence contract. All higher-level
// components read and write exclusively through the repository, which in
// turn uses only this interface.
type Store interface {
	// Get returns the bytes stored under key, or (nil, nil) if the key
	// is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing store.
	Close() error
}
