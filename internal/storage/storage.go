// Package storage is the durable client-side key-value store the cart
// and admin session live in. Values are plain strings under well-known
// keys; a missing key is not an error. Backends may support change
// notification so another running instance can observe writes, the way
// a second browser tab sees a storage event.
package storage

import "context"

// Storage is a profile-scoped string key-value store.
//
// Subscribe registers fn to run after any write or removal of key,
// including writes performed by another instance sharing the same
// backend. Delivery is best-effort freshness, not a consistency
// guarantee: the store's policy is last-writer-wins at whole-value
// granularity. Backends without a notification primitive return a
// no-op cancel.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Subscribe(key string, fn func()) (cancel func(), err error)
	Ping(ctx context.Context) error
}
