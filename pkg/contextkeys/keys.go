// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// USAGE PATTERN:
//   import "github.com/platinummonkey/collie/pkg/contextkeys"
//   ctx = contextkeys.WithLogin(ctx, login)
//   login, ok := contextkeys.GetLogin(ctx)
package contextkeys

import (
	"context"

	"github.com/platinummonkey/collie/pkg/auth"
)

// Key is the type for context keys to prevent collisions
type Key string

const (
	// LoginKey contains *auth.Login
	// Set by: middleware.CredentialExchange (pkg/middleware/credentials.go)
	// Required by: the token issuance endpoint (pkg/api/auth_handlers.go)
	// Type: *auth.Login
	LoginKey Key = "login"

	// RequestIDKey contains request ID string (UUID)
	// Set by: httputil.RequestIDMiddleware
	// Used by: Logger, access logging
	// Type: string
	RequestIDKey Key = "request_id"
)

// WithLogin adds a credential pair to the context
func WithLogin(ctx context.Context, login *auth.Login) context.Context {
	return context.WithValue(ctx, LoginKey, login)
}

// GetLogin retrieves the credential pair from context
func GetLogin(ctx context.Context) (*auth.Login, bool) {
	login, ok := ctx.Value(LoginKey).(*auth.Login)
	return login, ok
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
