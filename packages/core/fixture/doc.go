// Package fixture loads recorded webhook payloads and works out the HTTP
// headers they are replayed with.
//
// Header layers, lowest precedence first:
//   - static headers from the integration registry
//   - the integration's event header, valued with the fixture name prefix
//   - a <fixture>.headers.json sidecar next to the fixture
//   - custom headers given on the command line
//
// All but the custom layer use the recorded CGI-style keys
// (HTTP_X_GITHUB_EVENT), which are normalized to wire form (X-GITHUB-EVENT).
package fixture
