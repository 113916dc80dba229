// Package cli implements the collie command line interface.
//
// # Commands
//
// Run the service:
//
//	collie serve [-port 3000]
//
// Manage API keys (out-of-band; key administration has no HTTP surface):
//
//	collie key new [-description "reader for laptop"]
//	collie key list
//	collie key expire -id 3
//
// "key new" prints the access/secret pair exactly once. The secret is
// stored for signing but can never be read back through any command or
// endpoint.
package cli
