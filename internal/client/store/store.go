// Package store persists the bearer credential of the console between runs.
//
// The credential is kept as a single cookie record (name yamaphone_token) in
// the client's local SQLite database, together with the attributes a browser
// would keep for it: an absolute expiry, the Secure flag and SameSite=Strict.
// Expired records are invisible to Load; nothing else about the credential is
// inspected here.
package store

import (
	"context"
	"errors"
	"time"
)

const (
	// CookieName is the name of the persisted credential record.
	CookieName = "yamaphone_token"

	// DefaultTTL is the lifetime used when Save is given a non-positive ttl.
	DefaultTTL = 24 * time.Hour
)

// ErrEmptyCredential is returned by Save for an empty credential.
var ErrEmptyCredential = errors.New("empty credential")

// Store is the durable home of the bearer credential.
//
// Load returns "" and a nil error when no live credential is stored.
// Clear is idempotent.
type Store interface {
	Save(ctx context.Context, credential string, ttl time.Duration) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
