package auth

import (
	"context"
	"time"
)

// Key is a stored API key record. The secret is write-once: it is handed to
// the operator at creation and no read path ever returns it again.
type Key struct {
	ID          int64      `json:"id"`
	Access      string     `json:"access"`
	Secret      string     `json:"-"` // never serialized
	Description string     `json:"description,omitempty"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty"`
}

// Expired reports whether the key is logically expired at the given instant.
func (k *Key) Expired(now time.Time) bool {
	return k.ExpiredAt != nil && !now.Before(*k.ExpiredAt)
}

// KeyInfo is the listing view of a key: everything except the secret.
type KeyInfo struct {
	ID          int64      `json:"id"`
	Access      string     `json:"access"`
	Description string     `json:"description,omitempty"`
	ExpiredAt   *time.Time `json:"expired_at,omitempty"`
}

// Login carries the access/secret pair decoded from a Basic-style
// Authorization header by the credential-exchange middleware.
type Login struct {
	Access string
	Secret string
}

// Store persists API key records. SQLStore is the production
// implementation; the interface keeps the services testable without a
// database.
type Store interface {
	// CreateKey inserts a new key row and returns its id. A UNIQUE
	// violation on the access column yields ErrDuplicateAccess.
	CreateKey(ctx context.Context, key *Key) (int64, error)

	// FindKeyByAccess returns the key row for the access identifier, or
	// ErrNotFound. Expiry is not checked here; callers decide.
	FindKeyByAccess(ctx context.Context, access string) (*Key, error)

	// ListKeys returns every key without secrets, oldest first.
	ListKeys(ctx context.Context) ([]KeyInfo, error)

	// ExpireKey stamps expired_at. ErrNotFound when no row has the id.
	ExpireKey(ctx context.Context, id int64, at time.Time) error
}

// KeyFinder is the read-only slice of Store the token service needs.
type KeyFinder interface {
	FindKeyByAccess(ctx context.Context, access string) (*Key, error)
}
