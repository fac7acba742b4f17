// Package provision makes sure an integration's bot and its channel exist.
//
// Both provisioners are idempotent: they look up before they create, so a
// second run reuses what the first one made. Nothing here suppresses
// duplicate-creation errors; two runs racing on the same integration can
// still collide, and callers must not run them in parallel.
package provision
