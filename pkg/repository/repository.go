package repository

import (
	"context"
)

// Repository interfaces for persisted state. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// KVStore is the device-local key-value store. Writes are last-write-wins:
// concurrent writers are not detected and the latest Put observed by the
// backend is what Get returns. Put must be durable before it returns.
type KVStore interface {
	// Get returns the stored value and true, or "", false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
}
