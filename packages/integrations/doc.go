// Package integrations holds the static registry of webhook integrations.
//
// The registry is embedded in the binary and parsed once. Every lookup returns a
// copy, so callers can never mutate the shared descriptors.
package integrations
