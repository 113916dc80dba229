package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for the authentication subsystem. Handlers and middleware
// map these onto HTTP status codes; everything wrapping ErrInternal becomes
// a 500, the rest a 401/404.
var (
	// ErrUnauthorized covers bad credentials, bad/expired/malformed tokens,
	// and expired keys.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means no key row matches the given access identifier or id.
	ErrNotFound = errors.New("key not found")

	// ErrInvalid means the input could not be decoded (e.g. a non-base64
	// Authorization payload).
	ErrInvalid = errors.New("invalid input")

	// ErrInternal marks storage, signing, and RNG failures.
	ErrInternal = errors.New("internal error")

	// ErrDuplicateAccess is returned by Store.CreateKey when the generated
	// access identifier collides with an existing row. Key creation retries
	// with a fresh draw on this error.
	ErrDuplicateAccess = errors.New("duplicate access identifier")
)

// Internal wraps err so that errors.Is(err, ErrInternal) holds while the
// underlying cause stays inspectable.
func Internal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}
