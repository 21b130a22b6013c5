package core

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Backend.Get when the key is absent. The
// cache layer translates it into a plain miss; it never escapes the store.
var ErrKeyNotFound = errors.New("key not found")

// Backend is the minimal key/value capability the cache store is written
// against. Two implementations ship with chatkit: a process-local map and a
// Badger-backed shared store. The store never assumes exclusive ownership
// of a backend and always namespaces its keys.
//
// Ping must be cheap and honor the context deadline; it reports reachability
// only, not data integrity. Set may additionally enforce ttl natively, but
// the cache layer does not rely on it (expiry is checked on read).
type Backend interface {
	Ping(ctx context.Context) bool
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
}
