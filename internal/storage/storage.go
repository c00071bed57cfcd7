package storage

import (
	"context"
	"errors"
)

// Well-known store keys. These mirror the storefront's persisted state;
// carts are stored one key per session.
const (
	KeyOrders          = "orders"
	KeyMockUsers       = "mockUsers"
	KeyUser            = "user"
	KeyAuthToken       = "authToken"
	KeyLanguage        = "language"
	KeyLastPageVisited = "lastPageVisited"
	KeyLastPagePath    = "lastPagePath"

	// CartKeyPrefix namespaces per-session cart entries.
	CartKeyPrefix = "cart:"
)

var (
	// ErrKeyNotFound is returned when no value exists for a key.
	ErrKeyNotFound = errors.New("storage: key not found")
)

// Store is an injectable key-value store with JSON values.
//
// The in-memory implementation backs tests and demo mode; Redis and
// Postgres implementations back real deployments. Writes are
// last-write-wins; no cross-process consistency is guaranteed or
// required.
type Store interface {
	// Get decodes the value stored under key into out.
	// Returns ErrKeyNotFound if the key has never been set.
	Get(ctx context.Context, key string, out any) error

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value any) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
