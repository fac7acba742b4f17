// Package http provides the HTTP client hookshot replays webhooks with.
//
// It wraps the standard library's http package with:
//   - Optional timeouts (none by default)
//   - Redirect, proxy and TLS verification settings
//   - Query parameter building
//   - Whole-body responses with convenience accessors
//   - Detection of connection failures
package http
