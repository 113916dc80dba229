// Package auth provides API key management and session token issuance for collie.
//
// # Overview
//
// Clients authenticate in two steps. An operator first creates a long-lived
// API key pair out-of-band (`collie key new`); the pair is an opaque access
// identifier plus a secret, both 64 characters drawn from a fixed alphabet
// with crypto/rand. The client then exchanges the pair at GET /auth for a
// short-lived HS256 session token, and presents that token as a bearer
// credential on every protected route.
//
// # Key Lifecycle
//
//	svc := auth.NewKeyService(store)
//	key, secret, err := svc.CreateKey(ctx, "mobile client")
//	// secret is returned exactly once and never readable again
//
//	infos, err := svc.ListKeys(ctx) // access + description + expiry, no secrets
//	err = svc.ExpireKey(ctx, key.ID) // immediately unusable for issue AND verify
//
// # Session Tokens
//
// Tokens are signed per key: the stored secret of the key named by the
// token's subject claim is the HMAC signing secret. Expiring a key therefore
// invalidates that key's outstanding tokens without touching any other
// client, and tokens survive server restarts for as long as the key lives.
//
//	tokens := auth.NewTokenService(store)
//	tok, err := tokens.Issue(ctx, access, secret) // 3600s lifetime
//	err = tokens.Verify(ctx, tok)
//
// # Error Taxonomy
//
//	ErrUnauthorized - bad credentials, bad/expired/malformed token, expired key
//	ErrNotFound     - unknown access identifier or key id
//	ErrInvalid      - malformed input (e.g. undecodable Authorization header)
//	ErrInternal     - storage, signing, or RNG failure; maps to HTTP 500
//
// # Related Packages
//
//   - pkg/middleware: credential exchange and session verification middleware
//   - pkg/storage/sqlite: connection handling and schema for the keys table
package auth
