// Package cache provides the device-local key-value cache that fronts
// the remote data store. Entries are keyed by semantic strings derived
// from the entity they hold and carry no TTL: a cached value is trusted
// until a mutation explicitly invalidates it.
//
// Every operation is best-effort. A failing store must never block the
// caller from falling back to the remote fetch path, so implementations
// log failures and report them as misses rather than returning errors.
package cache

import "context"

// Store is the contract shared by every cache backend.
type Store interface {
	// Get returns the value stored under key, or false when the key is
	// absent or the backend failed.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string)
	// Flush drops every entry. Called on logout.
	Flush(ctx context.Context)
	// Close releases backend resources.
	Close() error
}
