// Package clickup provides a client for the ClickUp v3 docs API.
//
// This package fetches documents and their page trees for mirroring:
//   - API client with rate limiting and personal token or OAuth auth
//   - Conversion of page responses into wiki page trees
package clickup
