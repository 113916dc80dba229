// Package middleware provides the HTTP access-control middleware.
//
// # Overview
//
// This package implements the two gates in front of the API: credential
// exchange for the token issuance endpoint, and session verification for
// every protected route.
//
// # Middleware Components
//
// CredentialExchange: decodes the key pair for token issuance
//
//	gateway.Use(middleware.CredentialExchange)
//	// Takes the last whitespace-separated field of the Authorization
//	// header, base64-decodes it, splits on the first ':' into
//	// access and secret, and stores the pair in the request context.
//	// Any failure terminates the request with 401.
//
// SessionVerification: validates the session token
//
//	protected.Use(middleware.SessionVerification(tokens))
//	// Takes the last whitespace-separated field of the Authorization
//	// header as the token and verifies it. Invalid, expired, or
//	// tampered tokens get 401; a storage failure during key lookup
//	// gets 500. Nothing else reaches the handler.
//
// Both middlewares take the last whitespace-separated field, so scheme
// prefixes ("Basic ...", "Bearer ...") and bare credentials both work.
//
// # Related Packages
//
//   - pkg/auth: credential types and token verification
//   - pkg/contextkeys: the login context key
package middleware
