// Package token owns the durable session artifact: a single bearer token.
//
// No other package touches the underlying storage. The store holds at most
// one value under a fixed key; saving overwrites, clearing is idempotent, and
// a read that finds nothing (missing, corrupted, undecryptable) reports an
// empty token rather than an error, because "no session" is a normal state.
package token

import "context"

// Key is the one storage slot the SDK ever writes, matching the key the
// mobile client uses in the device secure store.
const Key = "auth_token"

// Store persists the bearer token between process runs.
type Store interface {
	// Save replaces the stored token. Safe to call without a prior Load.
	Save(ctx context.Context, token string) error
	// Load returns the stored token, or "" when there is none. Unreadable
	// state is treated as "no token", never surfaced as an error.
	Load(ctx context.Context) (string, error)
	// Clear removes the stored token. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
