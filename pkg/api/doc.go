// Package api wires the HTTP surface: the token issuance gateway, the
// protected feed and item routes, and the middleware chain around them.
//
// # Route Layout
//
// Gateway (behind CredentialExchange):
//
//	GET /auth    exchange an access/secret pair for a session token
//
// Protected (behind SessionVerification):
//
//	GET    /                 connectivity check, returns "hello-world"
//	GET    /feeds            list feeds
//	POST   /feeds            create a feed
//	GET    /feeds/{id}       get one feed
//	PATCH  /feeds/{id}       partial update
//	DELETE /feeds/{id}       delete (cascades items)
//	GET    /items            list items (status, is_saved, feed, limit, offset)
//	POST   /items            insert an item
//	PATCH  /items            bulk status update
//	PATCH  /items/{id}       update one item
//	GET    /items/count      count items
//
// Health and metrics live on a separate port (pkg/observability), never on
// the API listener.
package api
